package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"
)

// ErrMalformedHash — сохранённый хеш не удалось разобрать (не base64 или
// неправильная длина). На простое несовпадение пароля Verify отвечает false, не ошибкой.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword строит проверочный хеш пароля: base64(salt || производные 32 байта).
// Открытый пароль нигде не сохраняется и из хеша не восстанавливается.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	bits := DeriveKey(password, salt)
	return base64.StdEncoding.EncodeToString(append(salt, bits...)), nil
}

// VerifyPassword сверяет пароль-кандидат с сохранённым хешем.
// Сравнение за константное время (subtle), чтобы не течь по таймингу.
func VerifyPassword(password, stored string) (bool, error) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return false, ErrMalformedHash
	}
	if len(raw) != saltLen+keyLen {
		return false, ErrMalformedHash
	}
	salt, want := raw[:saltLen], raw[saltLen:]
	got := DeriveKey(password, salt)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}
