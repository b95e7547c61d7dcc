package repo

import (
	"EnvKeeper/internal/model"
	"context"

	"gorm.io/gorm"
)

// ProjectRepository — доступ к проектам.
type ProjectRepository interface {
	// CreateWithOwner создаёт проект и членство владельца одной транзакцией.
	CreateWithOwner(ctx context.Context, p *model.Project, owner *model.ProjectMember) error

	GetByID(ctx context.Context, id string) (*model.Project, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Project, error)
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepository создаёт реализацию репозитория проектов.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) CreateWithOwner(ctx context.Context, p *model.Project, owner *model.ProjectMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Create(owner).Error
	})
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListByUser(ctx context.Context, userID int64) ([]model.Project, error) {
	var out []model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_members pm ON pm.project_id = projects.id").
		Where("pm.user_id = ?", userID).
		Find(&out).Error
	return out, err
}
