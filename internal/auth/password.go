// Package auth содержит криптографические примитивы аутентификации:
// хеширование паролей, одноразовые коды восстановления и сессионные токены.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost — стоимость хеширования пароля по умолчанию.
const DefaultBcryptCost = 12

// HashPassword возвращает bcrypt-хеш пароля с указанной стоимостью.
func HashPassword(plaintext string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword сверяет пароль с хешем. Некорректный хеш считается несовпадением.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
