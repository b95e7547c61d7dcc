package handlers

import (
	"EnvKeeper/internal/config"
	"EnvKeeper/internal/middleware"
	"EnvKeeper/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	projectService *service.ProjectService,
	vaultService *service.VaultService,
	membershipService *service.MembershipService,
	secretLinkService *service.SecretLinkService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	projectHandler := NewProjectHandler(projectService, logger)
	vaultHandler := NewVaultHandler(vaultService, membershipService, logger)
	invitationHandler := NewInvitationHandler(membershipService, logger)
	secretHandler := NewSecretHandler(secretLinkService, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/test", userHandler.Status)

	// Project routes
	r.Post("/api/projects", projectHandler.Create)
	r.Get("/api/projects", projectHandler.List)

	// Vault routes
	r.Post("/api/projects/{projectID}/versions", vaultHandler.CreateVersion)
	r.Get("/api/projects/{projectID}/versions", vaultHandler.ListVersions)
	r.Get("/api/projects/{projectID}/variables", vaultHandler.ListVariables)
	r.Delete("/api/projects/{projectID}/variables/{name}", vaultHandler.DeleteVariable)
	r.Post("/api/variables/{variableID}/reveal", vaultHandler.Reveal)

	// Membership routes
	r.Post("/api/projects/{projectID}/invitations", invitationHandler.Create)
	r.Post("/api/invitations/{token}/accept", invitationHandler.Accept)
	r.Post("/api/invitations/{token}/reject", invitationHandler.Reject)
	r.Post("/api/projects/{projectID}/password", invitationHandler.ResolvePassword)

	// One-time secret routes
	r.Post("/api/secrets", secretHandler.Create)
	r.Get("/api/secrets/{token}", secretHandler.Disclose)

	return &Handler{Router: r}
}
