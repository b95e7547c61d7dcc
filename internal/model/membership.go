package model

import (
	"time"

	"EnvKeeper/internal/crypto"
)

// Роли участников проекта. Роль — вопрос авторизации на уровне приложения,
// криптослой ролей не различает: конверт доказывает только знание пароля.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Статусы приглашения. Переход одноразовый: pending -> accepted|rejected,
// либо истечение по ExpiresAt.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

// ProjectMember — участие пользователя в проекте. Для приглашённых Envelope
// содержит пароль проекта, зашифрованный их персональным access-паролем,
// AccessHash — проверочный хеш этого access-пароля. Владелец знает пароль
// проекта напрямую, конверт ему не нужен (Envelope пуст).
type ProjectMember struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	ProjectID string `gorm:"type:uuid;not null;uniqueIndex:idx_project_user,priority:1"`
	UserID    int64  `gorm:"not null;uniqueIndex:idx_project_user,priority:2"`

	Project *Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User    *User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Role       string          `gorm:"not null"`
	AccessHash string          // пуст у владельца
	Envelope   crypto.Envelope `gorm:"embedded"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// HasEnvelope сообщает, есть ли у участника конверт с паролем проекта.
// Проверяем тег: он непустой у любого настоящего конверта, даже с пустым
// шифртекстом.
func (m *ProjectMember) HasEnvelope() bool { return m.Envelope.Tag != "" }

// ProjectInvitation — приглашение в проект. Несёт ту же пару
// (конверт, access-хеш), которая при принятии копируется в ProjectMember.
type ProjectInvitation struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	ProjectID string `gorm:"type:uuid;not null;index"`
	InviterID int64  `gorm:"not null"`

	Project *Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	InvitedEmail string `gorm:"not null;index"`
	Role         string `gorm:"not null"`
	Token        string `gorm:"uniqueIndex;not null"`

	AccessHash string          `gorm:"not null"`
	Envelope   crypto.Envelope `gorm:"embedded"`

	Status     string `gorm:"not null;default:pending"`
	ExpiresAt  time.Time
	AcceptedAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
