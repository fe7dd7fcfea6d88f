package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HasanDroid18/SAWA-Backend/internal/model"
)

// SessionTTL — время жизни сессионного токена.
const SessionTTL = 8 * time.Hour

var (
	// ErrEmptyTokenSecret возвращается при создании TokenIssuer без секрета подписи.
	ErrEmptyTokenSecret = errors.New("token secret is not configured")
	// ErrInvalidToken возвращается при любой ошибке проверки токена:
	// неверная подпись, повреждённая структура или истёкший срок действия.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims — утверждения сессионного токена. Роль в токене фиксирует роль на
// момент входа; актуальные полномочия всегда перечитываются из хранилища.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64      `json:"userId"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

// TokenIssuer выдаёт и проверяет подписанные сессионные токены.
// Списка отзыва нет: окно компрометации ограничено временем жизни токена.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer создаёт TokenIssuer с указанным секретом подписи.
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptyTokenSecret
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    SessionTTL,
	}, nil
}

// Issue выпускает токен с идентификатором, почтой и ролью учётной записи.
func (t *TokenIssuer) Issue(accountID int64, email string, role model.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: accountID,
		Email:  email,
		Role:   role,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия токена и возвращает утверждения.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
