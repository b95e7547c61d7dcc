package service

import (
	"EnvKeeper/internal/config"
	"EnvKeeper/internal/model"
	"EnvKeeper/internal/repo"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SecretLinkService — одноразовая выдача сгенерированного пароля по токену.
// Значение хранится в base64 без шифрования: канал слабее конвертов,
// зато ссылка живёт считанные просмотры (см. DESIGN.md).
type SecretLinkService struct {
	secrets repo.SecretRepository
	cfg     *config.Config
	logger  *zap.SugaredLogger
}

func NewSecretLinkService(secrets repo.SecretRepository, cfg *config.Config, logger *zap.SugaredLogger) *SecretLinkService {
	return &SecretLinkService{secrets: secrets, cfg: cfg, logger: logger}
}

// Create регистрирует секрет. Нулевые maxViews/ttl берутся из конфигурации.
func (s *SecretLinkService) Create(ctx context.Context, password string, maxViews int, ttl time.Duration) (*model.OneTimeSecret, error) {
	if maxViews <= 0 {
		maxViews = s.cfg.SecretMaxViews
	}
	if ttl <= 0 {
		ttl = s.cfg.SecretTTL()
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	secret := &model.OneTimeSecret{
		ID:              uuid.NewString(),
		Token:           token,
		EncodedPassword: base64.StdEncoding.EncodeToString([]byte(password)),
		MaxViews:        maxViews,
		ExpiresAt:       time.Now().Add(ttl),
	}
	if err := s.secrets.Create(ctx, secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// Disclose выдаёт секрет по токену и списывает просмотр. Порядок проверок:
// не найден -> истёк -> лимит просмотров. Неудавшийся инкремент счётчика
// выдачу не блокирует, только логируется.
func (s *SecretLinkService) Disclose(ctx context.Context, token string) (string, error) {
	secret, err := s.secrets.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if time.Now().After(secret.ExpiresAt) {
		return "", ErrExpired
	}
	if secret.Views >= secret.MaxViews {
		return "", ErrViewLimitReached
	}

	if err := s.secrets.IncrementViews(ctx, secret.ID); err != nil {
		s.logger.Errorw("one-time secret view increment failed", "secret_id", secret.ID, "error", err)
	}

	raw, err := base64.StdEncoding.DecodeString(secret.EncodedPassword)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// PurgeExpired удаляет просроченные и исчерпанные секреты.
func (s *SecretLinkService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.secrets.DeleteExpired(ctx, time.Now())
}

// newToken — криптослучайный URL-safe токен (32 байта энтропии).
func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
