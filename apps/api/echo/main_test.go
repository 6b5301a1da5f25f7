package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/belajarku/backend/core"
	"github.com/belajarku/backend/core/chat"
	"github.com/belajarku/backend/core/gamification"
	"github.com/belajarku/backend/core/quiz"
	"github.com/belajarku/backend/core/topic"
	"github.com/belajarku/backend/core/user"
	emailsvc "github.com/belajarku/backend/services/email"
	dummydb "github.com/belajarku/backend/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	conf     *core.Config
	db       *dummydb.DB
	server   Server
	usrRepo  user.Repository
	usrSvc   user.Service
	topicSvc topic.Service
	quizRepo quiz.Repository
	quizSvc  quiz.Service
	gameSvc  gamification.Service
	chatSvc  chat.Service
}

func setup(t *testing.T) *testApp {
	conf := &core.Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   "Belajarku",
		SecretKey:                 []byte("secret"),
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmail:          mail.Address{Address: "noreply@localhost"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	quizRepo := dummydb.NewQuizRepository(db)

	// set up services
	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	topicSvc := topic.NewService(dummydb.NewTopicRepository(db))
	gameSvc := gamification.NewService(
		dummydb.NewBadgeRepository(db),
		dummydb.NewXPRepository(db),
		dummydb.NewProfileRepository(db),
		mailSvc,
		conf,
	)
	quizSvc := quiz.NewService(quizRepo, staticGenerator{}, gameSvc, nopLogger{})
	chatSvc := chat.NewService(dummydb.NewChatRepository(db))

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator, conf)

	// set up server
	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         nopLogger{},
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		TopicSvc:       topicSvc,
		QuizSvc:        quizSvc,
		GameSvc:        gameSvc,
		ChatSvc:        chatSvc,
		DisableReqLogs: true,
	})

	return &testApp{
		conf:     conf,
		db:       db,
		server:   server,
		usrRepo:  usrRepo,
		usrSvc:   usrSvc,
		topicSvc: topicSvc,
		quizRepo: quizRepo,
		quizSvc:  quizSvc,
		gameSvc:  gameSvc,
		chatSvc:  chatSvc,
	}
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// staticGenerator replaces the AI question generator in tests.
type staticGenerator struct{}

func (staticGenerator) GenerateQuestions(ctx context.Context, title, content string, n int) ([]quiz.NewQuestion, error) {
	questions := make([]quiz.NewQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, quiz.NewQuestion{
			Page:         "page-" + strconv.Itoa(i+1),
			Prompt:       "Apa isi halaman ini?",
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
		})
	}
	return questions, nil
}

func createUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
