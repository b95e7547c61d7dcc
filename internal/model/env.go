package model

import (
	"time"

	"EnvKeeper/internal/crypto"
)

// EnvVersion — неизменяемый снимок переменных проекта. Номера версий строго
// растут в рамках проекта; уникальный индекс (project_id, version_number)
// страхует от гонки параллельных сохранений.
type EnvVersion struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	ProjectID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_project_version,priority:1"`

	Project *Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	VersionNumber int64 `gorm:"not null;uniqueIndex:idx_project_version,priority:2"`
	VariableCount int   `gorm:"not null"`

	// Конверт с метаданными версии (комментарий автора и т.п.)
	Meta crypto.Envelope `gorm:"embedded;embeddedPrefix:meta_"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// EnvVariable — одна переменная внутри снимка. Имя хранится открыто,
// значение — только в конверте. Запись принадлежит ровно одной версии
// и после создания не меняется.
type EnvVariable struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	ProjectID string `gorm:"type:uuid;not null;index"`
	VersionID string `gorm:"type:uuid;not null;index"`

	Version *EnvVersion `gorm:"foreignKey:VersionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Name     string          `gorm:"not null"`
	Envelope crypto.Envelope `gorm:"embedded"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
