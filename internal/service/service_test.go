package service

import (
	"EnvKeeper/internal/config"
	"EnvKeeper/internal/repo"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// окружение для сервисных тестов: in-memory SQLite и все репозитории
type testEnv struct {
	db       *gorm.DB
	users    repo.UserRepository
	projects repo.ProjectRepository
	envs     repo.EnvRepository
	members  repo.MembershipRepository
	secrets  repo.SecretRepository
	cfg      *config.Config
	logger   *zap.SugaredLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	return &testEnv{
		db:       db,
		users:    repo.NewUserRepository(db),
		projects: repo.NewProjectRepository(db),
		envs:     repo.NewEnvRepository(db),
		members:  repo.NewMembershipRepository(db),
		secrets:  repo.NewSecretRepository(db),
		cfg: &config.Config{
			AuthSecret:         "test-secret",
			AppBaseURL:         "http://localhost:8081",
			InvitationTTLHours: 72,
			SecretTTLHours:     24,
			SecretMaxViews:     1,
		},
		logger: zap.NewNop().Sugar(),
	}
}
