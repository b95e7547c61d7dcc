package model

import "time"

// OneTimeSecret — одноразовая ссылка на выдачу сгенерированного пароля.
// EncodedPassword хранится в base64 без шифрования (слабее, чем конверт —
// осознанное упрощение канала, см. DESIGN.md). После views >= max_views
// или истечения срока выдача невозможна.
type OneTimeSecret struct {
	ID    string `gorm:"primaryKey;type:uuid"`
	Token string `gorm:"uniqueIndex;not null"`

	EncodedPassword string `gorm:"not null"`

	Views     int `gorm:"not null;default:0"`
	MaxViews  int `gorm:"not null;default:1"`
	ExpiresAt time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
