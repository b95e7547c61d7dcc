package service

import "errors"

// Сентинельные ошибки сервисного слоя. Сверяются через errors.Is;
// хендлеры переводят их в HTTP-коды.
var (
	// Учётные записи
	ErrLoginTaken         = errors.New("login already taken")
	ErrInvalidCredentials = errors.New("invalid login or password")

	// Общие
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// Пароль проекта не прошёл проверку по хешу. Версия/приглашение
	// при этом НЕ создаются.
	ErrInvalidPassword = errors.New("invalid project password")

	// Гонка параллельных сохранений версий не разрешилась за отведённые
	// попытки.
	ErrVersionConflict = errors.New("version conflict")

	// Access-пароль участника не прошёл проверку.
	ErrInvalidAccess = errors.New("invalid access password")

	// У участника нет конверта с паролем проекта (владелец знает пароль сам).
	ErrNoEnvelope = errors.New("membership has no password envelope")

	// Приглашения
	ErrInvalidRole   = errors.New("invalid role")
	ErrAlreadyUsed   = errors.New("invitation already used")
	ErrAlreadyMember = errors.New("already a project member")
	ErrExpired       = errors.New("expired")

	// Одноразовые секреты
	ErrViewLimitReached = errors.New("view limit reached")
)
