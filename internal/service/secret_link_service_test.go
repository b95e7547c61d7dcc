package service

import (
	"EnvKeeper/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSecretLinkService_DiscloseOnce(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSecretLinkService(env.secrets, env.cfg, env.logger)
	ctx := context.Background()

	// нулевые параметры — лимиты берутся из конфигурации
	secret, err := svc.Create(ctx, "generated-p@ss", 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, env.cfg.SecretMaxViews, secret.MaxViews)
	assert.NotContains(t, secret.EncodedPassword, "generated-p@ss")

	got, err := svc.Disclose(ctx, secret.Token)
	assert.NoError(t, err)
	assert.Equal(t, "generated-p@ss", got)

	// max_views = 1: второй просмотр не выдаётся
	_, err = svc.Disclose(ctx, secret.Token)
	assert.ErrorIs(t, err, ErrViewLimitReached)

	_, err = svc.Disclose(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSecretLinkService_MultipleViews(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSecretLinkService(env.secrets, env.cfg, env.logger)
	ctx := context.Background()

	secret, err := svc.Create(ctx, "shared", 3, time.Hour)
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := svc.Disclose(ctx, secret.Token)
		assert.NoError(t, err, "view %d", i+1)
		assert.Equal(t, "shared", got)
	}
	_, err = svc.Disclose(ctx, secret.Token)
	assert.ErrorIs(t, err, ErrViewLimitReached)
}

func TestSecretLinkService_ExpiredAndPurge(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSecretLinkService(env.secrets, env.cfg, env.logger)
	ctx := context.Background()

	expired, err := svc.Create(ctx, "old", 5, time.Hour)
	assert.NoError(t, err)
	alive, err := svc.Create(ctx, "fresh", 5, time.Hour)
	assert.NoError(t, err)

	// просрочиваем первый секрет прямо в хранилище
	assert.NoError(t, env.db.Model(&model.OneTimeSecret{}).
		Where("id = ?", expired.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = svc.Disclose(ctx, expired.Token)
	assert.ErrorIs(t, err, ErrExpired)

	// чистка убирает просроченный, живой остаётся
	n, err := svc.PurgeExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Disclose(ctx, expired.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Disclose(ctx, alive.Token)
	assert.NoError(t, err)
	assert.Equal(t, "fresh", got)
}
