package repo

import (
	"EnvKeeper/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// MembershipRepository — участники проектов и приглашения.
type MembershipRepository interface {
	CreateMember(ctx context.Context, m *model.ProjectMember) error
	GetMember(ctx context.Context, projectID string, userID int64) (*model.ProjectMember, error)
	ListMembers(ctx context.Context, projectID string) ([]model.ProjectMember, error)

	CreateInvitation(ctx context.Context, inv *model.ProjectInvitation) error
	GetInvitationByToken(ctx context.Context, token string) (*model.ProjectInvitation, error)

	// AcceptInvitation одной транзакцией переводит приглашение из pending
	// в accepted и создаёт членство. Возвращает false, если приглашение уже
	// было использовано. Ошибка вставки членства откатывает и смену статуса —
	// приглашение не сгорает без результата.
	AcceptInvitation(ctx context.Context, invitationID string, at time.Time, member *model.ProjectMember) (bool, error)
	MarkInvitationRejected(ctx context.Context, id string) (bool, error)
}

type membershipRepo struct {
	db *gorm.DB
}

// NewMembershipRepository создаёт реализацию репозитория участников.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) CreateMember(ctx context.Context, m *model.ProjectMember) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *membershipRepo) GetMember(ctx context.Context, projectID string, userID int64) (*model.ProjectMember, error) {
	var m model.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepo) ListMembers(ctx context.Context, projectID string) ([]model.ProjectMember, error) {
	var out []model.ProjectMember
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&out).Error
	return out, err
}

func (r *membershipRepo) CreateInvitation(ctx context.Context, inv *model.ProjectInvitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *membershipRepo) GetInvitationByToken(ctx context.Context, token string) (*model.ProjectInvitation, error) {
	var inv model.ProjectInvitation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *membershipRepo) AcceptInvitation(ctx context.Context, invitationID string, at time.Time, member *model.ProjectMember) (bool, error) {
	accepted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ProjectInvitation{}).
			Where("id = ? AND status = ?", invitationID, model.InvitationPending).
			Updates(map[string]any{"status": model.InvitationAccepted, "accepted_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		accepted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return accepted, nil
}

func (r *membershipRepo) MarkInvitationRejected(ctx context.Context, id string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&model.ProjectInvitation{}).
		Where("id = ? AND status = ?", id, model.InvitationPending).
		Update("status", model.InvitationRejected)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
