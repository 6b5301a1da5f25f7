package echoapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/belajarku/backend/core/user"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	pwd := "G0od#Pass123"
	usr := createUser(t, app.usrRepo, "Budi Santoso", "budisan", "budi@test.id", pwd, user.StudentRoles, true)
	naughty := createUser(t, app.usrRepo, "N Dog", "ndog", "ndog@test.id", pwd, user.StudentRoles, false)

	tests := []httpTest{
		{
			name: "Empty body", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "Unknown user", body: marchallObj(t, LoginRequest{Username: "lol", Password: pwd}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Wrong password", body: marchallObj(t, LoginRequest{Username: usr.Username, Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Inactive user not allowed", body: marchallObj(t, LoginRequest{Username: naughty.Username, Password: pwd}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "Login by username", body: marchallObj(t, LoginRequest{Username: usr.Username, Password: pwd}), wantCode: http.StatusOK},
		{name: "Login by email", body: marchallObj(t, LoginRequest{Username: usr.Email, Password: pwd}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.server.ServeHTTP(rec, req)

			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json.Unmarshal(): %v", err)
			}
			claims := new(Claims)
			token, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
				return app.conf.SecretKey, nil
			})
			if err != nil || !token.Valid {
				t.Fatalf("invalid token %q: %v", resp.Token, err)
			}
			if claims.Subject != usr.ID {
				t.Errorf("claims.Subject = %v; want %v", claims.Subject, usr.ID)
			}
			if !claims.IsStudent {
				t.Error("claims.IsStudent = false; want true")
			}
		})
	}
}

func Test_userApi_register(t *testing.T) {
	app := setup(t)
	createUser(t, app.usrRepo, "Existing", "takenuname", "taken@test.id", "", user.StudentRoles, true)

	body := func(name, uname, email, pwd, pwdConfirm string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            name,
			Username:        uname,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwdConfirm,
		})
	}

	tests := []httpTest{
		{
			name: "Password confirmation required", wantCode: http.StatusBadRequest,
			body: body("Siti Rahma", "sitirahma", "siti@test.id", "G0od#Pass123", "other"),
		},
		{
			name: "Weak password rejected", wantCode: http.StatusBadRequest,
			body: body("Siti Rahma", "sitirahma", "siti@test.id", "abc", "abc"),
		},
		{
			name: "Username taken", wantCode: http.StatusBadRequest,
			body:     body("Siti Rahma", "takenuname", "siti@test.id", "G0od#Pass123", "G0od#Pass123"),
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
		{
			name: "Registered as student", wantCode: http.StatusCreated,
			body: body("Siti Rahma", "sitirahma", "siti@test.id", "G0od#Pass123", "G0od#Pass123"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode != http.StatusCreated {
				return
			}
			var usr user.User
			if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
				t.Fatalf("json.Unmarshal(): %v", err)
			}
			if !usr.IsStudent() {
				t.Errorf("usr.Roles = %v; want student", usr.Roles)
			}
			if !usr.IsActive {
				t.Error("usr.IsActive = false; want true")
			}
		})
	}
}

func Test_userApi_userQuery(t *testing.T) {
	app := setup(t)

	path := func(search string, createdFrom, createdTo time.Time, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		if !createdFrom.IsZero() {
			v.Add("created_from", createdFrom.Format(time.RFC3339))
		}
		if !createdTo.IsZero() {
			v.Add("created_to", createdTo.Format(time.RFC3339))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	now := time.Now()
	t1 := now.Add(1 * time.Hour)
	t2 := now.Add(2 * time.Hour)
	t3 := now.Add(3 * time.Hour)
	t4 := now.Add(4 * time.Hour)
	t5 := now.Add(5 * time.Hour)

	usr1 := createUser(t, app.usrRepo, "User", "awe123", "awe@test.id", "", nil, true, t1)
	usr2 := createUser(t, app.usrRepo, "King", "user02", "king@test.id", "", nil, true)
	student := createUser(t, app.usrRepo, "Hero", "heroic", "user3@test.id", "", []string{user.RoleStudent}, true)
	admin := createUser(t, app.usrRepo, "Admin", "admin1", "admin@test.id", "", []string{user.RoleAdmin}, true, t2.Truncate(time.Second))
	owner := createUser(t, app.usrRepo, "Owner", "owner1", "owner@test.id", "", []string{user.RoleAdminOwner}, true)
	mentor := createUser(t, app.usrRepo, "Mentor", "mentor1", "mentor@test.id", "", []string{user.RoleMentor}, true, t3)
	naughty := createUser(t, app.usrRepo, "N Dog", "ndog12", "ndog@test.id", "", []string{user.RoleStudent}, false)

	adminToken := getToken(t, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get all", path: "/v1/users", token: adminToken,
			wantData: marchallList(t, usr1, usr2, student, admin, owner, mentor, naughty),
		},
		{name: "search (unknown)", path: path("lol", time.Time{}, time.Time{}, nil), token: adminToken, wantData: empty},
		{
			name: "search=USE", path: path("USE", time.Time{}, time.Time{}, nil),
			token: adminToken, wantData: marchallList(t, usr1, usr2, student),
		},
		{name: "role (unknown)", path: path("", time.Time{}, time.Time{}, nil, "lol"), token: adminToken, wantData: empty},
		{
			name: "role=admin:", path: path("", time.Time{}, time.Time{}, nil, user.RoleAdmin),
			token: adminToken, wantData: marchallList(t, admin, owner),
		},
		{
			name: "role=mentor:,student:", path: path("", time.Time{}, time.Time{}, nil, user.RoleMentor, user.RoleStudent),
			token: adminToken, wantData: marchallList(t, mentor, student, naughty),
		},
		{
			name: "is_active=true", path: path("", time.Time{}, time.Time{}, bPtr(true)),
			token: adminToken, wantData: marchallList(t, usr1, usr2, student, admin, owner, mentor),
		},
		{name: "is_active=false", path: path("", time.Time{}, time.Time{}, bPtr(false)), token: adminToken, wantData: marchallList(t, naughty)},
		{
			name: "created_from (UTC)", path: path("", t1.UTC(), time.Time{}, nil),
			token: adminToken, wantData: marchallList(t, usr1, admin, mentor),
		},
		{
			name: "created_to (curr TZ)", path: path("", time.Time{}, t2, nil),
			token: adminToken, wantData: marchallList(t, usr1, usr2, student, admin, owner, naughty),
		},
		{name: "created_from - created_to (empty)", path: path("", t4, t5, nil), token: adminToken, wantData: empty},
		{name: "created_from - created_to (found)", path: path("", t1, t2, nil), token: adminToken, wantData: marchallList(t, usr1, admin)},
		{name: "all combo (empty)", path: path("USE", t1, t5, bPtr(true), user.RoleAdminOwner), token: adminToken, wantData: empty},
		{
			name: "all combo (found)", path: path("men", t1, t5, bPtr(true), user.RoleMentor),
			token: adminToken, wantData: marchallList(t, mentor),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userRefreshToken(t *testing.T) {
	app := setup(t)

	naughty := createUser(t, app.usrRepo, "N Dog", "ndog12", "ndog@test.id", "", []string{user.RoleStudent}, false)
	student := createUser(t, app.usrRepo, "Hero", "heroic", "user3@test.id", "", []string{user.RoleStudent}, true)

	now := time.Now()
	unrefreshableClaims := GetUserClaims(student, now.Add(-2*app.conf.Server.JWTRefreshExpirationDelta).Unix())
	unrefreshableToken, err := GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)

			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json.Unmarshal(): %v", err)
			}
			if resp.Token == "" {
				t.Error("refreshed token is empty")
			}
		})
	}
}

func Test_userApi_userDetail(t *testing.T) {
	app := setup(t)

	student := createUser(t, app.usrRepo, "Hero", "heroic", "user3@test.id", "", []string{user.RoleStudent}, true)
	other := createUser(t, app.usrRepo, "Other", "other1", "other@test.id", "", []string{user.RoleStudent}, true)
	admin := createUser(t, app.usrRepo, "Admin", "admin1", "admin@test.id", "", []string{user.RoleAdmin}, true)

	studentToken := getToken(t, student)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + student.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Me", path: "/v1/users/me", token: studentToken, wantCode: http.StatusOK, wantData: marchallObj(t, student)},
		{name: "Own detail", path: "/v1/users/" + student.ID, token: studentToken, wantCode: http.StatusOK, wantData: marchallObj(t, student)},
		{
			name: "Someone else's detail hidden", path: "/v1/users/" + other.ID, token: studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "Admin can see anyone", path: "/v1/users/" + other.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, other)},
		{
			name: "Unknown user", path: "/v1/users/lol", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userDestroy(t *testing.T) {
	app := setup(t)

	student := createUser(t, app.usrRepo, "Hero", "heroic", "user3@test.id", "", []string{user.RoleStudent}, true)
	admin := createUser(t, app.usrRepo, "Admin", "admin1", "admin@test.id", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	t.Run("Admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("Admin deletes a user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+student.ID, adminToken)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
		if _, err := app.usrSvc.GetByID(req.Context(), student.ID); err != user.ErrNotFound {
			t.Errorf("GetByID() error = %v; want %v", err, user.ErrNotFound)
		}
	})
}
