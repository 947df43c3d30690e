package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/reportube/reportube/core"
	"github.com/reportube/reportube/core/report"
	"github.com/reportube/reportube/core/score"
	"github.com/reportube/reportube/core/student"
	"github.com/reportube/reportube/core/user"
	emailsvc "github.com/reportube/reportube/services/email"
	pdfsvc "github.com/reportube/reportube/services/pdf"
	inmemdb "github.com/reportube/reportube/storage/database/inmem"
)

type testEnv struct {
	server  Server
	auth    *jwtAuth
	conf    *core.Config
	db      *inmemdb.DB
	mailSvc core.EmailService

	usrRepo user.Repository
	stdRepo student.Repository
	scRepo  score.Repository

	usrSvc    *user.Service
	stdSvc    *student.Service
	scoreSvc  *score.Service
	reportSvc *report.Service
}

// testLogger drops everything; handler tests assert on responses, not logs.
type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func testConfig() *core.Config {
	return &core.Config{
		Env:         "TEST",
		TestMode:    true,
		AppName:     "ReporTube",
		AppSubtitle: "Academic Performance Report",
		SecretKey:   "secret",
		Server: core.ServerConfig{
			Host:                      "localhost",
			Port:                      "8000",
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := testConfig()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	env := &testEnv{
		conf:    conf,
		db:      db,
		mailSvc: mailSvc,
		usrRepo: inmemdb.NewUserRepository(db),
		stdRepo: inmemdb.NewStudentRepository(db),
		scRepo:  inmemdb.NewScoreRepository(db),
	}
	env.usrSvc = user.NewService(env.usrRepo, mailSvc, conf)
	env.stdSvc = student.NewService(env.stdRepo)
	env.scoreSvc = score.NewService(env.scRepo)
	env.reportSvc = report.NewService(env.stdSvc, env.scoreSvc, pdfsvc.NewRenderer(), mailSvc, conf)

	env.auth = newJWTAuth(conf)
	env.server = NewServer(&Options{
		Conf:           conf,
		Logger:         testLogger{},
		DisableReqLogs: true,
		UserSvc:        env.usrSvc,
		StudentSvc:     env.stdSvc,
		ScoreSvc:       env.scoreSvc,
		ReportSvc:      env.reportSvc,
		Validate:       validate,
		Translator:     translator,
	})
	return env
}

func (env *testEnv) request(method, path, token string, data ...interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		_ = json.NewEncoder(&body).Encode(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}


func (env *testEnv) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := env.auth.generateToken(env.auth.getUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (env *testEnv) createUser(t *testing.T, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (env *testEnv) createAdmin(t *testing.T) (user.User, string) {
	t.Helper()
	usr := env.createUser(t, "Principal", "principal", "principal@test.cd", "sekret", user.AllRoles, true)
	return usr, env.getToken(t, usr)
}

func (env *testEnv) createTeacher(t *testing.T) (user.User, string) {
	t.Helper()
	usr := env.createUser(t, "Mwalimu", "mwalimu", "mwalimu@test.cd", "sekret", user.TeacherRoles, true)
	return usr, env.getToken(t, usr)
}

func (env *testEnv) createStudent(t *testing.T, first, last, admNo, classID, parentEmail string) student.Student {
	t.Helper()

	now := time.Now().UTC()
	std := student.Student{
		AdmissionNumber: admNo,
		FirstName:       first,
		LastName:        last,
		Gender:          "Male",
		ParentName:      "Parent " + last,
		ParentEmail:     parentEmail,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if classID != "" {
		std.ClassID = null.StringFrom(classID)
	}
	std, err := env.stdRepo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func (env *testEnv) createClass(t *testing.T, name, level, year string) student.Class {
	t.Helper()

	now := time.Now().UTC()
	cls, err := env.stdRepo.CreateClass(context.Background(), student.Class{
		Name:         name,
		Level:        level,
		AcademicYear: year,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return cls
}

func (env *testEnv) createSubject(t *testing.T, name, code string) student.Subject {
	t.Helper()

	now := time.Now().UTC()
	sub, err := env.stdRepo.CreateSubject(context.Background(), student.Subject{
		Name:      name,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createSubject() failed: %v", err)
	}
	return sub
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Errorf("code = %v; want %v; body = %s", rec.Code, want, rec.Body.String())
	}
}
