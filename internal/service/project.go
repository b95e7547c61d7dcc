package service

import (
	"EnvKeeper/internal/crypto"
	"EnvKeeper/internal/model"
	"EnvKeeper/internal/repo"
	"context"

	"github.com/google/uuid"
)

// ProjectService — создание проектов. Пароль проекта сразу превращается
// в проверочный хеш, открытым он на сервере не задерживается.
type ProjectService struct {
	projects repo.ProjectRepository
}

func NewProjectService(projects repo.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

// Create создаёт проект и членство владельца. Владельцу конверт не нужен —
// пароль проекта он знает напрямую.
func (s *ProjectService) Create(ctx context.Context, ownerID int64, name, password string) (*model.Project, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	p := &model.Project{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		PasswordHash: hash,
	}
	owner := &model.ProjectMember{
		ID:        uuid.NewString(),
		ProjectID: p.ID,
		UserID:    ownerID,
		Role:      model.RoleOwner,
	}
	if err := s.projects.CreateWithOwner(ctx, p, owner); err != nil {
		return nil, err
	}
	return p, nil
}

// List возвращает проекты, где пользователь состоит участником.
func (s *ProjectService) List(ctx context.Context, userID int64) ([]model.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}
