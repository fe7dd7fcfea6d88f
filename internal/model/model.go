// Package model содержит доменные сущности сервиса SAWA.
package model

import (
	"strings"
	"time"
)

// Role описывает уровень полномочий учётной записи.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleSubAdmin Role = "SubAdmin"
	RoleUser     Role = "User"
)

// ParseRole нормализует регистр и возвращает каноническое значение роли.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "subadmin":
		return RoleSubAdmin, true
	case "user":
		return RoleUser, true
	}
	return "", false
}

// Account представляет учётную запись пользователя платформы.
type Account struct {
	ID           int64
	FullName     string
	PhoneNumber  string
	Email        string
	PasswordHash string
	Role         Role
	DateOfBirth  *time.Time
	Address      string
	BloodType    string
	ImagePath    string

	// Состояние кода восстановления пароля: HMAC-метка и момент выдачи.
	// Очищается после любого терминального использования кода.
	RecoveryCodeTag string
	RecoveryCodeAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DonationRequest — заявка пользователя в очереди на предмет пожертвования.
type DonationRequest struct {
	AccountID   int64     `json:"account_id"`
	DisplayName string    `json:"display_name"`
	Contact     string    `json:"contact"`
	RequestedAt time.Time `json:"requested_at"`
}

// DonationItem представляет предмет пожертвования и очередь заявок на него.
type DonationItem struct {
	ID          int64
	Name        string
	ImagePath   string
	Price       float64
	Description string
	Quantity    int
	RequestedBy []DonationRequest
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
