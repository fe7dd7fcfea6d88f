// Package validation содержит функции валидации входных данных.
package validation

import (
	"net/mail"
	"strings"
	"unicode"
)

const specialChars = `!@#$%^&*(),.?":{}|<>`

// NormalizeEmail приводит адрес к нижнему регистру и убирает пробелы по краям.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail проверяет синтаксическую корректность адреса электронной почты.
func IsValidEmail(email string) bool {
	if len(email) < 5 {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// IsValidPhoneNumber проверяет, что номер телефона состоит ровно из 8 цифр.
func IsValidPhoneNumber(phone string) bool {
	if len(phone) != 8 {
		return false
	}
	for _, ch := range phone {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}

// IsValidPassword проверяет минимальную длину пароля и наличие спецсимвола.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	return strings.ContainsAny(password, specialChars)
}

// IsValidFullName проверяет длину полного имени.
func IsValidFullName(name string) bool {
	n := len(strings.TrimSpace(name))
	return n >= 3 && n <= 50
}
