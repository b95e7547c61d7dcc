package main

import (
	"EnvKeeper/internal/config"
	"EnvKeeper/internal/handlers"
	"EnvKeeper/internal/middleware"
	"EnvKeeper/internal/repo"
	"EnvKeeper/internal/service"
	"net/http"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	projectRepo := repo.NewProjectRepository(gormDB)
	envRepo := repo.NewEnvRepository(gormDB)
	membershipRepo := repo.NewMembershipRepository(gormDB)
	secretRepo := repo.NewSecretRepository(gormDB)

	userService := service.NewUserService(userRepo)
	projectService := service.NewProjectService(projectRepo)
	vaultService := service.NewVaultService(projectRepo, envRepo, sugar)
	secretLinkService := service.NewSecretLinkService(secretRepo, cfg, sugar)
	emailSender := &service.LogEmailSender{Logger: sugar}
	membershipService := service.NewMembershipService(projectRepo, membershipRepo, secretLinkService, emailSender, cfg, sugar)

	h := handlers.NewHandler(userService, projectService, vaultService, membershipService, secretLinkService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"AppBaseURL", cfg.AppBaseURL,
		"InvitationTTLHours", cfg.InvitationTTLHours,
		"SecretTTLHours", cfg.SecretTTLHours,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
