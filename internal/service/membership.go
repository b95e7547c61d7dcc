package service

import (
	"EnvKeeper/internal/config"
	"EnvKeeper/internal/crypto"
	"EnvKeeper/internal/model"
	"EnvKeeper/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MembershipService — передача пароля проекта приглашённым без раскрытия.
// Пароль проекта шифруется персональным access-паролем приглашённого
// (второй конверт), сам access-пароль уходит адресату одноразовой ссылкой.
type MembershipService struct {
	projects repo.ProjectRepository
	members  repo.MembershipRepository
	links    *SecretLinkService
	email    EmailSender
	cfg      *config.Config
	logger   *zap.SugaredLogger
}

func NewMembershipService(
	projects repo.ProjectRepository,
	members repo.MembershipRepository,
	links *SecretLinkService,
	email EmailSender,
	cfg *config.Config,
	logger *zap.SugaredLogger,
) *MembershipService {
	return &MembershipService{
		projects: projects,
		members:  members,
		links:    links,
		email:    email,
		cfg:      cfg,
		logger:   logger,
	}
}

// CreateInvitation создаёт приглашение: проверяет пароль проекта, шифрует его
// access-паролем приглашённого и отправляет письмо со ссылками. Приглашать
// могут только owner/admin; роль owner не выдаётся — владелец ровно один.
func (s *MembershipService) CreateInvitation(ctx context.Context, projectID string, inviterID int64, invitedEmail, role, accessPassword, projectPassword string) (*model.ProjectInvitation, error) {
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, ErrInvalidRole
	}

	inviter, err := s.members.GetMember(ctx, projectID, inviterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if inviter.Role != model.RoleOwner && inviter.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ok, err := crypto.VerifyPassword(projectPassword, project.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidPassword
	}

	envelope, err := crypto.Encrypt(projectPassword, accessPassword)
	if err != nil {
		return nil, err
	}
	accessHash, err := crypto.HashPassword(accessPassword)
	if err != nil {
		return nil, err
	}
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	inv := &model.ProjectInvitation{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		InviterID:    inviterID,
		InvitedEmail: invitedEmail,
		Role:         role,
		Token:        token,
		AccessHash:   accessHash,
		Envelope:     *envelope,
		Status:       model.InvitationPending,
		ExpiresAt:    time.Now().Add(s.cfg.InvitationTTL()),
	}
	if err := s.members.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	// access-пароль уходит адресату только одноразовой ссылкой
	secret, err := s.links.Create(ctx, accessPassword, 0, 0)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf(
		`<p>You have been invited to the project "%s".</p>`+
			`<p>Accept: %s/invitations/%s</p>`+
			`<p>Your one-time access password link: %s/s/%s</p>`,
		project.Name, s.cfg.AppBaseURL, inv.Token, s.cfg.AppBaseURL, secret.Token)
	if err := s.email.Send(ctx, invitedEmail, "Project invitation", body); err != nil {
		// приглашение уже создано, письмо можно переслать вручную
		s.logger.Errorw("invitation email failed", "invitation_id", inv.ID, "error", err)
	}

	return inv, nil
}

// AcceptInvitation — одноразовый переход pending -> accepted. Конверт и
// access-хеш приглашения копируются в членство, чтобы участник мог потом
// восстановить пароль проекта своим access-паролем. Смена статуса и вставка
// членства идут одной транзакцией: если членство не создалось, приглашение
// остаётся pending и конверт не теряется.
func (s *MembershipService) AcceptInvitation(ctx context.Context, token string, userID int64) (*model.ProjectMember, error) {
	inv, err := s.getPending(ctx, token)
	if err != nil {
		return nil, err
	}

	if _, err := s.members.GetMember(ctx, inv.ProjectID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member := &model.ProjectMember{
		ID:         uuid.NewString(),
		ProjectID:  inv.ProjectID,
		UserID:     userID,
		Role:       inv.Role,
		AccessHash: inv.AccessHash,
		Envelope:   inv.Envelope,
	}
	ok, err := s.members.AcceptInvitation(ctx, inv.ID, time.Now(), member)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyUsed
	}
	return member, nil
}

// RejectInvitation — терминальный отказ, приглашение больше не принимается.
func (s *MembershipService) RejectInvitation(ctx context.Context, token string) error {
	inv, err := s.getPending(ctx, token)
	if err != nil {
		return err
	}
	ok, err := s.members.MarkInvitationRejected(ctx, inv.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyUsed
	}
	return nil
}

// ResolveProjectPassword восстанавливает пароль проекта из конверта участника.
// Сначала access-пароль сверяется с хешем (ErrInvalidAccess при несовпадении),
// затем конверт расшифровывается. Владельцу конверт не выдавался — ErrNoEnvelope.
func (s *MembershipService) ResolveProjectPassword(ctx context.Context, projectID string, userID int64, accessPassword string) (string, error) {
	member, err := s.members.GetMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if !member.HasEnvelope() {
		return "", ErrNoEnvelope
	}

	ok, err := crypto.VerifyPassword(accessPassword, member.AccessHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidAccess
	}

	return crypto.Decrypt(&member.Envelope, accessPassword)
}

// RequireMember возвращает ErrForbidden, если пользователь не состоит
// в проекте. Барьер для операций чтения, не защищённых паролем проекта.
func (s *MembershipService) RequireMember(ctx context.Context, projectID string, userID int64) error {
	_, err := s.members.GetMember(ctx, projectID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrForbidden
	}
	return err
}

func (s *MembershipService) getPending(ctx context.Context, token string) (*model.ProjectInvitation, error) {
	inv, err := s.members.GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if inv.Status != model.InvitationPending {
		return nil, ErrAlreadyUsed
	}
	if time.Now().After(inv.ExpiresAt) {
		return nil, ErrExpired
	}
	return inv, nil
}
