package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/belajarku/backend/core/topic"
	"github.com/belajarku/backend/core/user"
)

func createTopic(t *testing.T, app *testApp, name string) topic.Topic {
	tp, err := app.topicSvc.CreateTopic(context.Background(), topic.NewTopic{Name: name})
	if err != nil {
		t.Fatalf("createTopic(): %v", err)
	}
	return tp
}

func createMaterial(t *testing.T, app *testApp, topicName, title, content string, pageCount int) topic.Material {
	tp := createTopic(t, app, topicName)
	mat, err := app.topicSvc.CreateMaterial(context.Background(), topic.NewMaterial{
		TopicID:   tp.ID,
		Title:     title,
		Content:   content,
		PageCount: pageCount,
	})
	if err != nil {
		t.Fatalf("createMaterial(): %v", err)
	}
	return mat
}

func Test_topicApi_crud(t *testing.T) {
	app := setup(t)

	student := createUser(t, app.usrRepo, "Hero", "heroic", "hero@test.id", "", []string{user.RoleStudent}, true)
	mentor := createUser(t, app.usrRepo, "Mentor", "mentor1", "mentor@test.id", "", []string{user.RoleMentor}, true)
	admin := createUser(t, app.usrRepo, "Admin", "admin1", "admin@test.id", "", []string{user.RoleAdmin}, true)

	studentToken := getToken(t, student)
	mentorToken := getToken(t, mentor)
	adminToken := getToken(t, admin)

	var created topic.Topic

	t.Run("Staff required to create", func(t *testing.T) {
		body := marchallObj(t, topic.NewTopic{Name: "Pemrograman Go"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/topics", studentToken, body)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Name required", func(t *testing.T) {
		body := marchallObj(t, topic.NewTopic{Description: "tanpa nama"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/topics", mentorToken, body)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Mentor creates topic", func(t *testing.T) {
		body := marchallObj(t, topic.NewTopic{Name: "Pemrograman Go", Description: "Dasar-dasar Go"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/topics", mentorToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; data = %v", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if created.ID == "" || created.Name != "Pemrograman Go" {
			t.Errorf("created = %+v", created)
		}
	})

	t.Run("Students can list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/topics", studentToken)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t, created)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Search misses", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/topics?search=lol", studentToken)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Mentor adds materials", func(t *testing.T) {
		for i, title := range []string{"Pengenalan", "Sintaks Dasar"} {
			body := marchallObj(t, topic.NewMaterial{
				TopicID:   created.ID,
				Title:     title,
				Content:   "Isi materi " + title,
				PageCount: 3,
				Position:  i,
			})
			req, rec := newAuthRequest(http.MethodPost, "/v1/materials", mentorToken, body)
			app.server.ServeHTTP(rec, req)
			if rec.Code != http.StatusCreated {
				t.Fatalf("code = %v; data = %v", rec.Code, rec.Body.String())
			}
		}
	})

	t.Run("Material needs existing topic", func(t *testing.T) {
		body := marchallObj(t, topic.NewMaterial{TopicID: "lol", Title: "Lost", Content: "x", PageCount: 1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/materials", mentorToken, body)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Detail includes ordered materials", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/topics/"+created.ID, studentToken)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var detail topic.Topic
		if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(detail.Materials) != 2 {
			t.Fatalf("len(Materials) = %d; want 2", len(detail.Materials))
		}
		if detail.Materials[0].Title != "Pengenalan" || detail.Materials[1].Title != "Sintaks Dasar" {
			t.Errorf("materials out of order: %+v", detail.Materials)
		}
	})

	t.Run("Update topic", func(t *testing.T) {
		body := marchallObj(t, topic.UpdateTopic{Description: "Diperbarui"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/topics/"+created.ID, mentorToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var updated topic.Topic
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if updated.Name != created.Name || updated.Description != "Diperbarui" {
			t.Errorf("updated = %+v", updated)
		}
	})

	t.Run("Unknown topic", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/topics/lol", studentToken)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Admin required to delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/topics/"+created.ID, mentorToken)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Admin deletes topic", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/topics/"+created.ID, adminToken)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; data = %v", rec.Code, rec.Body.String())
		}
		if _, err := app.topicSvc.GetTopic(req.Context(), created.ID); err != topic.ErrTopicNotFound {
			t.Errorf("GetTopic() error = %v; want %v", err, topic.ErrTopicNotFound)
		}
	})
}
