package handlers

import (
	"EnvKeeper/internal/crypto"
	"EnvKeeper/internal/middleware"
	"EnvKeeper/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// VaultHandler — версии и переменные окружения.
type VaultHandler struct {
	VaultService      *service.VaultService
	MembershipService *service.MembershipService
	Logger            *zap.SugaredLogger
}

func NewVaultHandler(vaultService *service.VaultService, membershipService *service.MembershipService, logger *zap.SugaredLogger) *VaultHandler {
	return &VaultHandler{VaultService: vaultService, MembershipService: membershipService, Logger: logger}
}

// requireMember закрывает чтение от аутентифицированных не-участников:
// списки не требуют пароля проекта, членство проверяется явно.
func (h *VaultHandler) requireMember(w http.ResponseWriter, r *http.Request, projectID string, userID int64) bool {
	if err := h.MembershipService.RequireMember(r.Context(), projectID, userID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			http.Error(w, "forbidden", http.StatusForbidden)
		} else {
			h.Logger.Errorw("membership check failed", "project_id", projectID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return false
	}
	return true
}

type envEntryDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type createVersionRequest struct {
	Password  string        `json:"password"`
	Variables []envEntryDTO `json:"variables"`
}

type versionDTO struct {
	ID            string   `json:"id"`
	VersionNumber int64    `json:"version_number"`
	VariableCount int      `json:"variable_count"`
	CreatedAt     string   `json:"created_at"`
	Skipped       []string `json:"skipped,omitempty"`
}

// CreateVersion сохраняет новый снимок переменных проекта.
func (h *VaultHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	projectID := chi.URLParam(r, "projectID")

	var req createVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	entries := make([]service.EnvEntry, 0, len(req.Variables))
	for _, v := range req.Variables {
		if v.Name == "" {
			http.Error(w, "variable name required", http.StatusBadRequest)
			return
		}
		entries = append(entries, service.EnvEntry{Name: v.Name, Value: v.Value})
	}

	res, err := h.VaultService.CreateVersion(r.Context(), projectID, entries, req.Password)
	if err != nil {
		h.writeVaultError(w, "CreateVersion", projectID, err)
		return
	}

	writeJSON(w, http.StatusCreated, versionDTO{
		ID:            res.Version.ID,
		VersionNumber: res.Version.VersionNumber,
		VariableCount: res.Version.VariableCount,
		CreatedAt:     res.Version.CreatedAt.UTC().Format(time.RFC3339),
		Skipped:       res.Skipped,
	})
}

// ListVersions — история версий проекта, только для участников.
func (h *VaultHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	projectID := chi.URLParam(r, "projectID")
	if !h.requireMember(w, r, projectID, uid) {
		return
	}

	versions, err := h.VaultService.ListVersions(r.Context(), projectID)
	if err != nil {
		h.Logger.Errorw("ListVersions: service error", "project_id", projectID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]versionDTO, 0, len(versions))
	for _, v := range versions {
		out = append(out, versionDTO{
			ID:            v.ID,
			VersionNumber: v.VersionNumber,
			VariableCount: v.VariableCount,
			CreatedAt:     v.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type variableDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// ListVariables — имена переменных последнего снимка (значения не отдаются),
// только для участников.
func (h *VaultHandler) ListVariables(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	projectID := chi.URLParam(r, "projectID")
	if !h.requireMember(w, r, projectID, uid) {
		return
	}

	vars, err := h.VaultService.ListVariables(r.Context(), projectID)
	if err != nil {
		h.Logger.Errorw("ListVariables: service error", "project_id", projectID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]variableDTO, 0, len(vars))
	for _, v := range vars {
		out = append(out, variableDTO{
			ID:        v.ID,
			Name:      v.Name,
			CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type passwordRequest struct {
	Password string `json:"password"`
}

// DeleteVariable создаёт новую версию без указанной переменной.
func (h *VaultHandler) DeleteVariable(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	projectID := chi.URLParam(r, "projectID")
	name := chi.URLParam(r, "name")

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	res, err := h.VaultService.DeleteVariable(r.Context(), projectID, name, req.Password)
	if err != nil {
		h.writeVaultError(w, "DeleteVariable", projectID, err)
		return
	}

	writeJSON(w, http.StatusOK, versionDTO{
		ID:            res.Version.ID,
		VersionNumber: res.Version.VersionNumber,
		VariableCount: res.Version.VariableCount,
		CreatedAt:     res.Version.CreatedAt.UTC().Format(time.RFC3339),
		Skipped:       res.Skipped,
	})
}

// Reveal расшифровывает одно значение. Неверный пароль и порча данных
// отдаются одним и тем же ответом.
func (h *VaultHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	variableID := chi.URLParam(r, "variableID")

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	value, err := h.VaultService.Reveal(r.Context(), variableID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, crypto.ErrDecryption):
			http.Error(w, "invalid password or corrupted data", http.StatusUnauthorized)
		default:
			h.Logger.Errorw("Reveal: service error", "variable_id", variableID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"value": value})
}

func (h *VaultHandler) writeVaultError(w http.ResponseWriter, op, projectID string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidPassword):
		http.Error(w, "invalid project password", http.StatusUnauthorized)
	case errors.Is(err, service.ErrVersionConflict):
		http.Error(w, "version conflict, retry", http.StatusConflict)
	default:
		h.Logger.Errorw(op+": service error", "project_id", projectID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
