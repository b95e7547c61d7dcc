package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Параметры схемы. Менять нельзя — иначе ранее сохранённые конверты
// перестанут расшифровываться.
const (
	keyLen     = 32     // AES-256
	saltLen    = 16     // соль PBKDF2
	nonceLen   = 12     // стандартный nonce GCM
	tagLen     = 16     // 128-битный тег аутентификации
	iterations = 100000 // итерации PBKDF2-SHA256
)

// ErrDecryption — единая ошибка расшифровки. Неверный пароль и испорченный
// шифртекст неразличимы для вызывающего (no oracle).
var ErrDecryption = errors.New("decryption failed: invalid password or corrupted data")

// Envelope — конверт одного зашифрованного значения.
// Все поля base64 (std), готовы к хранению в БД как есть.
type Envelope struct {
	Cipher string `json:"cipher"`
	Salt   string `json:"salt"`
	Nonce  string `json:"nonce"`
	Tag    string `json:"tag"`
}

// DeriveKey выводит симметричный ключ из пароля и соли.
// Детерминированно: одинаковые пароль+соль всегда дают один ключ.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
}

// Encrypt шифрует строку plain паролем password (AES-256-GCM поверх PBKDF2).
// Соль и nonce генерируются заново при каждом вызове.
func Encrypt(plain, password string) (*Envelope, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	gcm, err := newGCM(DeriveKey(password, salt))
	if err != nil {
		return nil, err
	}

	// Seal возвращает ciphertext||tag, тег — последние 16 байт
	sealed := gcm.Seal(nil, nonce, []byte(plain), nil)
	ct, tag := sealed[:len(sealed)-tagLen], sealed[len(sealed)-tagLen:]

	return &Envelope{
		Cipher: base64.StdEncoding.EncodeToString(ct),
		Salt:   base64.StdEncoding.EncodeToString(salt),
		Nonce:  base64.StdEncoding.EncodeToString(nonce),
		Tag:    base64.StdEncoding.EncodeToString(tag),
	}, nil
}

// Decrypt расшифровывает конверт. Любая проблема верификации (неверный пароль,
// подмена шифртекста или тега, битый base64) возвращается как ErrDecryption.
func Decrypt(env *Envelope, password string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(env.Cipher)
	if err != nil {
		return "", ErrDecryption
	}
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return "", ErrDecryption
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil || len(nonce) != nonceLen {
		return "", ErrDecryption
	}
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	if err != nil || len(tag) != tagLen {
		return "", ErrDecryption
	}

	gcm, err := newGCM(DeriveKey(password, salt))
	if err != nil {
		return "", err
	}

	// собираем обратно ciphertext||tag и проверяем одним вызовом
	plain, err := gcm.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plain), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
