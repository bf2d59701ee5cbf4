// Package jwt выпускает и проверяет bearer-токены провайдера идентичности.
// Биллинг использует только идентификатор, почту и роль пользователя из токена.
package jwt

import (
	"errors"
	"time"
)

// RoleAdmin роль, которой доступны операции над планами и отчёты.
const RoleAdmin = "admin"

// ErrInvalidToken токен не прошёл проверку подписи или срока.
var ErrInvalidToken = errors.New("invalid token")

// Maker выпускает и проверяет токены.
type Maker interface {
	GenerateToken(userID, email, role string) (string, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl подписывает токены HMAC-ключом с заданным временем жизни.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
