package handlers

import (
	"EnvKeeper/internal/middleware"
	"EnvKeeper/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SecretHandler — одноразовые ссылки на выдачу пароля.
type SecretHandler struct {
	SecretLinkService *service.SecretLinkService
	Logger            *zap.SugaredLogger
}

func NewSecretHandler(secretLinkService *service.SecretLinkService, logger *zap.SugaredLogger) *SecretHandler {
	return &SecretHandler{SecretLinkService: secretLinkService, Logger: logger}
}

type createSecretRequest struct {
	Password string `json:"password"`
	MaxViews int    `json:"max_views,omitempty"`
	TTLHours int    `json:"ttl_hours,omitempty"`
}

// Create регистрирует одноразовый секрет и возвращает токен.
func (h *SecretHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	secret, err := h.SecretLinkService.Create(r.Context(), req.Password, req.MaxViews,
		time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		h.Logger.Errorw("CreateSecret: service error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token":      secret.Token,
		"max_views":  secret.MaxViews,
		"expires_at": secret.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Disclose выдаёт секрет по токену. Выдача анонимная: ссылка сама по себе
// и есть доступ.
func (h *SecretHandler) Disclose(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	value, err := h.SecretLinkService.Disclose(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, service.ErrExpired):
			http.Error(w, "expired", http.StatusGone)
		case errors.Is(err, service.ErrViewLimitReached):
			http.Error(w, "view limit reached", http.StatusGone)
		default:
			h.Logger.Errorw("DiscloseSecret: service error", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"password": value})
}
