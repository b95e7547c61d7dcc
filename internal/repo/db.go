package repo

import (
	"EnvKeeper/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB открывает подключение к PostgreSQL и прогоняет автомиграции.
// TranslateError нужен, чтобы нарушение уникальных индексов приходило
// как gorm.ErrDuplicatedKey (на нём держится защита нумерации версий).
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate выполняет автомиграции всех моделей.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.EnvVersion{},
		&model.EnvVariable{},
		&model.ProjectMember{},
		&model.ProjectInvitation{},
		&model.OneTimeSecret{},
	)
}
