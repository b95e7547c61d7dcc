package repo

import (
	"EnvKeeper/internal/model"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// EnvRepository — доступ к версиям и переменным окружения.
type EnvRepository interface {
	// CreateVersionWithVariables вставляет версию и все её переменные одной
	// транзакцией. Дубликат (project_id, version_number) от параллельного
	// сохранения приходит как gorm.ErrDuplicatedKey.
	CreateVersionWithVariables(ctx context.Context, v *model.EnvVersion, vars []model.EnvVariable) error

	// GetLatestVersion возвращает версию с максимальным номером,
	// gorm.ErrRecordNotFound — если версий ещё нет.
	GetLatestVersion(ctx context.Context, projectID string) (*model.EnvVersion, error)

	GetVariablesByVersion(ctx context.Context, versionID string) ([]model.EnvVariable, error)
	GetVariableByID(ctx context.Context, id string) (*model.EnvVariable, error)
	ListVersions(ctx context.Context, projectID string) ([]model.EnvVersion, error)
}

type envRepo struct {
	db *gorm.DB
}

// NewEnvRepository создаёт реализацию репозитория версий/переменных.
func NewEnvRepository(db *gorm.DB) EnvRepository {
	return &envRepo{db: db}
}

func (r *envRepo) CreateVersionWithVariables(ctx context.Context, v *model.EnvVersion, vars []model.EnvVariable) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		if len(vars) == 0 {
			return nil
		}
		return tx.Create(&vars).Error
	})
}

func (r *envRepo) GetLatestVersion(ctx context.Context, projectID string) (*model.EnvVersion, error) {
	var v model.EnvVersion
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version_number DESC").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *envRepo) GetVariablesByVersion(ctx context.Context, versionID string) ([]model.EnvVariable, error) {
	var out []model.EnvVariable
	err := r.db.WithContext(ctx).
		Where("version_id = ?", versionID).
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (r *envRepo) GetVariableByID(ctx context.Context, id string) (*model.EnvVariable, error) {
	var v model.EnvVariable
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *envRepo) ListVersions(ctx context.Context, projectID string) ([]model.EnvVersion, error) {
	var out []model.EnvVersion
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version_number ASC").
		Find(&out).Error
	return out, err
}

// IsDuplicateVersion — true, если ошибка вызвана нарушением уникальности
// (project_id, version_number), то есть гонкой параллельных сохранений.
// Postgres с TranslateError приходит как gorm.ErrDuplicatedKey; у ошибки
// modernc/sqlite код недоступен переводчику драйвера, остаётся текст.
func IsDuplicateVersion(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
