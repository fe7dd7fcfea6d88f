package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// CodeTTL — окно действия одноразового кода восстановления.
const CodeTTL = 5 * time.Minute

// ErrEmptyCodeSecret возвращается при создании CodeIssuer без секретного ключа.
var ErrEmptyCodeSecret = errors.New("recovery code secret is not configured")

// CodeIssuer выдаёт одноразовые числовые коды восстановления и проверяет их
// по HMAC-метке. Компонент без состояния: очистка использованного кода —
// обязанность вызывающей стороны.
type CodeIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewCodeIssuer создаёт CodeIssuer с указанным секретом.
// Пустой секрет — ошибка конфигурации, а не повод для тихого обхода.
func NewCodeIssuer(secret string) (*CodeIssuer, error) {
	if secret == "" {
		return nil, ErrEmptyCodeSecret
	}
	return &CodeIssuer{
		secret: []byte(secret),
		ttl:    CodeTTL,
	}, nil
}

// Issue генерирует пятизначный код в диапазоне [10000, 99999] и его
// HMAC-метку для безопасного хранения.
func (c *CodeIssuer) Issue() (code string, tag string, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", "", fmt.Errorf("generate code: %w", err)
	}
	code = fmt.Sprintf("%d", n.Int64()+10000)
	return code, c.Tag(code), nil
}

// Tag возвращает HMAC-SHA256-метку кода в шестнадцатеричном виде.
func (c *CodeIssuer) Tag(code string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify проверяет код: метка должна совпадать, а с момента выдачи
// должно пройти не больше окна действия.
func (c *CodeIssuer) Verify(candidate, storedTag string, issuedAt, now time.Time) bool {
	if storedTag == "" {
		return false
	}
	if now.Sub(issuedAt) > c.ttl {
		return false
	}
	return hmac.Equal([]byte(c.Tag(candidate)), []byte(storedTag))
}
