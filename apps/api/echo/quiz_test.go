package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/belajarku/backend/core/gamification"
	"github.com/belajarku/backend/core/quiz"
	"github.com/belajarku/backend/core/user"
	emailsvc "github.com/belajarku/backend/services/email"
	dummydb "github.com/belajarku/backend/storage/database/dummy"
)

var testBadges = []gamification.Badge{
	{ID: "badge-perunggu", Name: "Perunggu", Image: "perunggu.jpg", LevelMin: 1, LevelMax: 2},
	{ID: "badge-perak", Name: "Perak", Image: "perak.jpg", LevelMin: 3, LevelMax: 4},
	{ID: "badge-emas", Name: "Emas", Image: "emas.png", LevelMin: 5, LevelMax: 6},
	{ID: "badge-berlian", Name: "Berlian", Image: "berlian.png", LevelMin: 7, LevelMax: 8},
}

func seedQuestions(t *testing.T, repo quiz.Repository, materialID string, correctIndexes ...int) []quiz.Question {
	now := time.Now().UTC()
	questions := make([]quiz.Question, 0, len(correctIndexes))
	for i, correct := range correctIndexes {
		questions = append(questions, quiz.Question{
			ID:           uuid.New().String(),
			MaterialID:   materialID,
			Page:         pageID(i + 1),
			Prompt:       "Apa isi halaman ini?",
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: correct,
			CreatedAt:    now,
		})
	}
	if err := repo.ReplaceQuestions(context.Background(), materialID, questions); err != nil {
		t.Fatalf("seedQuestions(): %v", err)
	}
	return questions
}

func pageID(n int) string {
	return [...]string{"", "hal-1", "hal-2", "hal-3"}[n]
}

func submitAnswer(t *testing.T, app *testApp, token, materialID, page string, selected int) quiz.AnswerResult {
	body := marchallObj(t, quiz.SubmitAnswer{MaterialID: materialID, Page: page, SelectedAnswer: &selected})
	req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/answers", token, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submitAnswer() code = %v; data = %v", rec.Code, rec.Body.String())
	}
	var res quiz.AnswerResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("submitAnswer(): %v", err)
	}
	return res
}

func Test_quizApi_submitAnswer(t *testing.T) {
	app := setup(t)
	dummydb.SeedBadges(app.db, testBadges...)
	seedQuestions(t, app.quizRepo, "mat1", 1, 2, 3)

	student := createUser(t, app.usrRepo, "Hero", "heroic", "hero@test.id", "", []string{user.RoleStudent}, true)
	token := getToken(t, student)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/quiz/answers")
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Unknown material", func(t *testing.T) {
		selected := 0
		body := marchallObj(t, quiz.SubmitAnswer{MaterialID: "lol", Page: pageID(1), SelectedAnswer: &selected})
		req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/answers", token, body)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Wrong answer", func(t *testing.T) {
		res := submitAnswer(t, app, token, "mat1", pageID(1), 0)
		want := quiz.AnswerResult{IsCorrect: false, CorrectAnswer: 1, IsCompleted: false, XPEarned: 0}
		if res != want {
			t.Errorf("result = %+v; want %+v", res, want)
		}
	})

	t.Run("Correcting the same page", func(t *testing.T) {
		res := submitAnswer(t, app, token, "mat1", pageID(1), 1)
		if !res.IsCorrect {
			t.Error("IsCorrect = false; want true")
		}
		if res.IsCompleted {
			t.Error("IsCompleted = true; want false")
		}
	})

	t.Run("Third submission completes the attempt", func(t *testing.T) {
		res := submitAnswer(t, app, token, "mat1", pageID(2), 2)
		want := quiz.AnswerResult{IsCorrect: true, CorrectAnswer: 2, IsCompleted: true, XPEarned: 10}
		if res != want {
			t.Errorf("result = %+v; want %+v", res, want)
		}
	})

	t.Run("Scores reflect latest page results", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/quiz/materials/mat1/scores", token)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var ledger quiz.ScoreLedger
		if err := json.Unmarshal(rec.Body.Bytes(), &ledger); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if ledger.TotalAnswered != 2 || ledger.TotalCorrect != 2 {
			t.Errorf("counters = (%d, %d); want (2, 2)", ledger.TotalAnswered, ledger.TotalCorrect)
		}
		if len(ledger.Pages) != 2 {
			t.Errorf("len(Pages) = %d; want 2", len(ledger.Pages))
		}
		if ledger.Pages[pageID(1)].Result != quiz.ResultCorrect {
			t.Errorf("page 1 result = %v; want %v", ledger.Pages[pageID(1)].Result, quiz.ResultCorrect)
		}
	})

	t.Run("Badge resolved on completion", func(t *testing.T) {
		usr, err := app.usrSvc.GetByID(context.Background(), student.ID)
		if err != nil {
			t.Fatalf("GetByID(): %v", err)
		}
		if usr.BadgeID != "badge-perunggu" {
			t.Errorf("BadgeID = %q; want %q", usr.BadgeID, "badge-perunggu")
		}
		if len(emailsvc.SentMessages) == 0 {
			t.Error("no badge notification sent")
		}
	})

	t.Run("Retake improves XP", func(t *testing.T) {
		submitAnswer(t, app, token, "mat1", pageID(1), 1)
		submitAnswer(t, app, token, "mat1", pageID(2), 2)
		res := submitAnswer(t, app, token, "mat1", pageID(3), 3)
		want := quiz.AnswerResult{IsCorrect: true, CorrectAnswer: 3, IsCompleted: true, XPEarned: 15}
		if res != want {
			t.Errorf("result = %+v; want %+v", res, want)
		}
	})

	t.Run("Worse retake keeps best XP", func(t *testing.T) {
		submitAnswer(t, app, token, "mat1", pageID(1), 0)
		submitAnswer(t, app, token, "mat1", pageID(2), 0)
		res := submitAnswer(t, app, token, "mat1", pageID(3), 0)
		if !res.IsCompleted {
			t.Error("IsCompleted = false; want true")
		}
		if res.XPEarned != 15 {
			t.Errorf("XPEarned = %d; want 15", res.XPEarned)
		}
	})

	t.Run("Progress endpoint", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/quiz/materials/mat1/progress", token)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var progress quiz.Progress
		if err := json.Unmarshal(rec.Body.Bytes(), &progress); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if !progress.IsCompleted || progress.XPEarned != 15 {
			t.Errorf("progress = %+v; want completed with 15 XP", progress)
		}
	})
}

func Test_quizApi_queryQuestions(t *testing.T) {
	app := setup(t)
	seedQuestions(t, app.quizRepo, "mat1", 1, 2, 3)
	student := createUser(t, app.usrRepo, "Hero", "heroic", "hero@test.id", "", []string{user.RoleStudent}, true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/quiz/materials/mat1/questions", getToken(t, student))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; data = %v", rec.Code, rec.Body.String())
	}

	var questions []quiz.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(questions) != quiz.TotalQuestions {
		t.Fatalf("len(questions) = %d; want %d", len(questions), quiz.TotalQuestions)
	}
	// answers must not leak to students
	for _, q := range questions {
		if q.CorrectIndex != 0 {
			t.Errorf("CorrectIndex leaked for page %v", q.Page)
		}
	}
}

func Test_quizApi_regenerateQuestions(t *testing.T) {
	app := setup(t)

	mat := createMaterial(t, app, "Go Dasar", "Materi Go", "Pengenalan Go untuk pemula.", 3)
	student := createUser(t, app.usrRepo, "Hero", "heroic", "hero@test.id", "", []string{user.RoleStudent}, true)
	mentor := createUser(t, app.usrRepo, "Mentor", "mentor1", "mentor@test.id", "", []string{user.RoleMentor}, true)

	t.Run("Staff required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/materials/"+mat.ID+"/questions", getToken(t, student))
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Unknown material", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/materials/lol/questions", getToken(t, mentor))
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Questions regenerated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/quiz/materials/"+mat.ID+"/questions", getToken(t, mentor))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; data = %v", rec.Code, rec.Body.String())
		}
		var questions []quiz.Question
		if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(questions) != quiz.TotalQuestions {
			t.Fatalf("len(questions) = %d; want %d", len(questions), quiz.TotalQuestions)
		}

		stored, err := app.quizSvc.QuestionsForMaterial(context.Background(), mat.ID)
		if err != nil {
			t.Fatalf("QuestionsForMaterial(): %v", err)
		}
		if len(stored) != quiz.TotalQuestions {
			t.Errorf("len(stored) = %d; want %d", len(stored), quiz.TotalQuestions)
		}
	})
}

func Test_gamificationApi(t *testing.T) {
	app := setup(t)
	dummydb.SeedBadges(app.db, testBadges...)
	seedQuestions(t, app.quizRepo, "mat1", 0, 0, 0)
	seedQuestions(t, app.quizRepo, "mat2", 0, 0, 0)

	student := createUser(t, app.usrRepo, "Hero", "heroic", "hero@test.id", "", []string{user.RoleStudent}, true)
	token := getToken(t, student)

	// two perfect attempts: 30 XP -> still level 1
	for _, mat := range []string{"mat1", "mat2"} {
		for i := 1; i <= quiz.TotalQuestions; i++ {
			submitAnswer(t, app, token, mat, pageID(i), 0)
		}
	}

	t.Run("Level info", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/gamification/level", token)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, gamification.LevelInfo{
				Level:              1,
				LevelName:          "Pemula",
				CurrentLevelXP:     30,
				XPForNextLevel:     100,
				ProgressPercentage: 30,
			}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Current badge has rewritten image", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/gamification/badge", token)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, gamification.Badge{
				ID: "badge-perunggu", Name: "Perunggu", Image: "perunggu.png", LevelMin: 1, LevelMax: 2,
			}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Unlocked badges", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/gamification/badges/unlocked", token)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallList(t, gamification.Badge{
				ID: "badge-perunggu", Name: "Perunggu", Image: "perunggu.png", LevelMin: 1, LevelMax: 2,
			}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("No badge catalog", func(t *testing.T) {
		bare := setup(t)
		usr := createUser(t, bare.usrRepo, "Solo", "solo12", "solo@test.id", "", []string{user.RoleStudent}, true)
		req, rec := newAuthRequest(http.MethodGet, "/v1/gamification/badge", getToken(t, usr))
		bare.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})
}
