package handlers_test

import (
	"EnvKeeper/internal/config"
	"EnvKeeper/internal/handlers"
	"EnvKeeper/internal/middleware"
	"EnvKeeper/internal/repo"
	"EnvKeeper/internal/service"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// recordingEmail копит «отправленные» письма вместо реального SMTP
type recordingEmail struct {
	to     []string
	bodies []string
}

func (e *recordingEmail) Send(_ context.Context, to, _, body string) error {
	e.to = append(e.to, to)
	e.bodies = append(e.bodies, body)
	return nil
}

var _ service.EmailSender = (*recordingEmail)(nil)

// testApp — полный роутер над in-memory SQLite
type testApp struct {
	router http.Handler
	cfg    *config.Config
	db     *gorm.DB
	email  *recordingEmail
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWithUsers(t, nil)
}

// newTestAppWithUsers позволяет подменить репозиторий пользователей моком
func newTestAppWithUsers(t *testing.T, users repo.UserRepository) *testApp {
	t.Helper()
	dsn := fmt.Sprintf("file:h_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}

	if users == nil {
		users = repo.NewUserRepository(db)
	}
	projects := repo.NewProjectRepository(db)
	envs := repo.NewEnvRepository(db)
	members := repo.NewMembershipRepository(db)
	secrets := repo.NewSecretRepository(db)

	cfg := &config.Config{
		AuthSecret:         "test-secret",
		AppBaseURL:         "http://localhost:8081",
		InvitationTTLHours: 72,
		SecretTTLHours:     24,
		SecretMaxViews:     1,
	}
	logger := zap.NewNop().Sugar()
	email := &recordingEmail{}

	userSvc := service.NewUserService(users)
	projectSvc := service.NewProjectService(projects)
	vaultSvc := service.NewVaultService(projects, envs, logger)
	linkSvc := service.NewSecretLinkService(secrets, cfg, logger)
	memberSvc := service.NewMembershipService(projects, members, linkSvc, email, cfg, logger)

	h := handlers.NewHandler(userSvc, projectSvc, vaultSvc, memberSvc, linkSvc, logger, cfg)
	return &testApp{router: h.Router, cfg: cfg, db: db, email: email}
}

func addAuth(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// do выполняет JSON-запрос; userID = 0 — анонимный
func (a *testApp) do(t *testing.T, method, path, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		addAuth(t, req, userID, a.cfg.AuthSecret)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, rr.Body.String())
	}
	return m
}

// register создаёт пользователя через API и возвращает его id
func (a *testApp) register(t *testing.T, login string) int64 {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/api/user/register",
		fmt.Sprintf(`{"login":%q,"password":"p@ss"}`, login), 0)
	if rr.Code != http.StatusOK {
		t.Fatalf("register %s failed: %d %s", login, rr.Code, rr.Body.String())
	}
	id, ok := decodeJSON(t, rr)["id"].(float64)
	if !ok {
		t.Fatalf("register %s: no id in response", login)
	}
	return int64(id)
}
