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

// InvitationHandler — приглашения и восстановление пароля проекта.
type InvitationHandler struct {
	MembershipService *service.MembershipService
	Logger            *zap.SugaredLogger
}

func NewInvitationHandler(membershipService *service.MembershipService, logger *zap.SugaredLogger) *InvitationHandler {
	return &InvitationHandler{MembershipService: membershipService, Logger: logger}
}

type createInvitationRequest struct {
	Email           string `json:"email"`
	Role            string `json:"role"`
	AccessPassword  string `json:"access_password"`
	ProjectPassword string `json:"project_password"`
}

type invitationDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Create создаёт приглашение и отправляет письмо.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	projectID := chi.URLParam(r, "projectID")

	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Email == "" || req.AccessPassword == "" || req.ProjectPassword == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	inv, err := h.MembershipService.CreateInvitation(r.Context(), projectID, uid,
		req.Email, req.Role, req.AccessPassword, req.ProjectPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			http.Error(w, "invalid role", http.StatusBadRequest)
		case errors.Is(err, service.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidPassword):
			http.Error(w, "invalid project password", http.StatusUnauthorized)
		default:
			h.Logger.Errorw("CreateInvitation: service error", "project_id", projectID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, invitationDTO{
		ID:        inv.ID,
		Email:     inv.InvitedEmail,
		Role:      inv.Role,
		Token:     inv.Token,
		ExpiresAt: inv.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Accept принимает приглашение от имени текущего пользователя.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	token := chi.URLParam(r, "token")

	member, err := h.MembershipService.AcceptInvitation(r.Context(), token, uid)
	if err != nil {
		h.writeInvitationError(w, "AcceptInvitation", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"project_id": member.ProjectID,
		"role":       member.Role,
	})
}

// Reject отклоняет приглашение.
func (h *InvitationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	token := chi.URLParam(r, "token")

	if err := h.MembershipService.RejectInvitation(r.Context(), token); err != nil {
		h.writeInvitationError(w, "RejectInvitation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resolvePasswordRequest struct {
	AccessPassword string `json:"access_password"`
}

// ResolvePassword возвращает пароль проекта из конверта участника.
func (h *InvitationHandler) ResolvePassword(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	projectID := chi.URLParam(r, "projectID")

	var req resolvePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessPassword == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	password, err := h.MembershipService.ResolveProjectPassword(r.Context(), projectID, uid, req.AccessPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNoEnvelope):
			http.Error(w, "no password envelope for this membership", http.StatusForbidden)
		case errors.Is(err, service.ErrInvalidAccess):
			http.Error(w, "invalid access password", http.StatusForbidden)
		case errors.Is(err, crypto.ErrDecryption):
			http.Error(w, "invalid password or corrupted data", http.StatusForbidden)
		default:
			h.Logger.Errorw("ResolvePassword: service error", "project_id", projectID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"project_password": password})
}

func (h *InvitationHandler) writeInvitationError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrExpired):
		http.Error(w, "invitation expired", http.StatusGone)
	case errors.Is(err, service.ErrAlreadyUsed):
		http.Error(w, "invitation already used", http.StatusConflict)
	case errors.Is(err, service.ErrAlreadyMember):
		http.Error(w, "already a project member", http.StatusConflict)
	default:
		h.Logger.Errorw(op+": service error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
