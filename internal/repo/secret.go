package repo

import (
	"EnvKeeper/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// SecretRepository — одноразовые секреты.
type SecretRepository interface {
	Create(ctx context.Context, s *model.OneTimeSecret) error
	GetByToken(ctx context.Context, token string) (*model.OneTimeSecret, error)

	// IncrementViews атомарно увеличивает счётчик просмотров на стороне БД.
	IncrementViews(ctx context.Context, id string) error

	// DeleteExpired удаляет просроченные и исчерпанные записи, возвращает
	// количество удалённых.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type secretRepo struct {
	db *gorm.DB
}

// NewSecretRepository создаёт реализацию репозитория одноразовых секретов.
func NewSecretRepository(db *gorm.DB) SecretRepository {
	return &secretRepo{db: db}
}

func (r *secretRepo) Create(ctx context.Context, s *model.OneTimeSecret) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *secretRepo) GetByToken(ctx context.Context, token string) (*model.OneTimeSecret, error) {
	var s model.OneTimeSecret
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *secretRepo) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.OneTimeSecret{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *secretRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR views >= max_views", now).
		Delete(&model.OneTimeSecret{})
	return tx.RowsAffected, tx.Error
}
