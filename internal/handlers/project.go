package handlers

import (
	"EnvKeeper/internal/middleware"
	"EnvKeeper/internal/service"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ProjectHandler — создание и список проектов.
type ProjectHandler struct {
	ProjectService *service.ProjectService
	Logger         *zap.SugaredLogger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.SugaredLogger) *ProjectHandler {
	return &ProjectHandler{ProjectService: projectService, Logger: logger}
}

type createProjectRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type projectDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// Create создаёт проект. Пароль проекта приходит один раз и сохраняется
// только в виде проверочного хеша.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	p, err := h.ProjectService.Create(r.Context(), uid, req.Name, req.Password)
	if err != nil {
		h.Logger.Errorw("CreateProject: service error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, projectDTO{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// List возвращает проекты текущего пользователя.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	projects, err := h.ProjectService.List(r.Context(), uid)
	if err != nil {
		h.Logger.Errorw("ListProjects: service error", "user_id", uid, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]projectDTO, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectDTO{
			ID:        p.ID,
			Name:      p.Name,
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
