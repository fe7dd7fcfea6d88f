// Package service реализует бизнес-логику сервиса SAWA.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HasanDroid18/SAWA-Backend/internal/auth"
	"github.com/HasanDroid18/SAWA-Backend/internal/donation"
	"github.com/HasanDroid18/SAWA-Backend/internal/model"
	"github.com/HasanDroid18/SAWA-Backend/internal/repository"
	"github.com/HasanDroid18/SAWA-Backend/internal/validation"
)

// ErrInvalidCredentials возвращается при неверной паре почта/пароль.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidCode возвращается при неверном или просроченном коде восстановления.
	ErrInvalidCode = errors.New("invalid or expired recovery code")
	// ErrPasswordMismatch возвращается, если подтверждение пароля не совпадает с новым паролем.
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrInvalidRole возвращается при попытке назначить недопустимую роль.
	ErrInvalidRole = errors.New("invalid role")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateAccount(ctx context.Context, acc model.Account) (int64, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	GetAccountRole(ctx context.Context, id int64) (model.Role, bool, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	UpdateAccountPassword(ctx context.Context, id int64, passwordHash string) error
	SetRecoveryCode(ctx context.Context, id int64, tag string, issuedAt time.Time) error
	ClearRecoveryCode(ctx context.Context, id int64) error
	CompletePasswordRecovery(ctx context.Context, id int64, passwordHash string) error
	UpdateAccountRole(ctx context.Context, id int64, role model.Role) error
	UpdateAccountProfile(ctx context.Context, acc model.Account) error
	HasAdminAccount(ctx context.Context) (bool, error)

	CreateDonationItem(ctx context.Context, item model.DonationItem) (int64, error)
	GetDonationItemByID(ctx context.Context, id int64) (*model.DonationItem, error)
	ListDonationItems(ctx context.Context) ([]model.DonationItem, error)
	UpdateDonationItemFields(ctx context.Context, item model.DonationItem) error
	DeleteDonationItem(ctx context.Context, id int64) error
	UpdateDonationItem(ctx context.Context, id int64, mutate func(model.DonationItem) (model.DonationItem, error)) (*model.DonationItem, error)
}

// MailSender отправляет письма с кодами восстановления.
type MailSender interface {
	SendRecoveryCode(to, code string) error
}

// FileRemover освобождает сохранённые файлы по ссылке-пути.
type FileRemover interface {
	Remove(path string) error
}

// Service содержит бизнес-логику сервиса SAWA.
type Service struct {
	repo       Repository
	codes      *auth.CodeIssuer
	tokens     *auth.TokenIssuer
	mailer     MailSender
	files      FileRemover
	bcryptCost int
	logger     *zap.Logger
}

// NewService создаёт сервис с указанными зависимостями.
func NewService(repo Repository, codes *auth.CodeIssuer, tokens *auth.TokenIssuer, mailer MailSender, files FileRemover, bcryptCost int, logger *zap.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = auth.DefaultBcryptCost
	}
	return &Service{
		repo:       repo,
		codes:      codes,
		tokens:     tokens,
		mailer:     mailer,
		files:      files,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Signup регистрирует новую учётную запись с ролью User.
func (s *Service) Signup(ctx context.Context, fullName, phoneNumber, email, password string) (*model.Account, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	acc := model.Account{
		FullName:     fullName,
		PhoneNumber:  phoneNumber,
		Email:        validation.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         model.RoleUser,
	}

	id, err := s.repo.CreateAccount(ctx, acc)
	if err != nil {
		return nil, err
	}

	acc.ID = id
	acc.PasswordHash = ""
	return &acc, nil
}

// Signin проверяет учётные данные и выпускает сессионный токен.
func (s *Service) Signin(ctx context.Context, email, password string) (*model.Account, string, error) {
	acc, err := s.repo.GetAccountByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPassword(password, acc.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(acc.ID, acc.Email, acc.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	acc.PasswordHash = ""
	return acc, token, nil
}

// ChangePassword меняет пароль после проверки старого.
func (s *Service) ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error {
	acc, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(oldPassword, acc.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	return s.repo.UpdateAccountPassword(ctx, accountID, hash)
}

// SendForgotPasswordCode выпускает одноразовый код, отправляет его по почте
// и только после успешной передачи письма сохраняет HMAC-метку кода.
func (s *Service) SendForgotPasswordCode(ctx context.Context, email string) error {
	acc, err := s.repo.GetAccountByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return err
	}

	code, tag, err := s.codes.Issue()
	if err != nil {
		return err
	}

	if err := s.mailer.SendRecoveryCode(acc.Email, code); err != nil {
		return fmt.Errorf("deliver recovery code: %w", err)
	}

	return s.repo.SetRecoveryCode(ctx, acc.ID, tag, time.Now())
}

// VerifyForgotPasswordCode завершает восстановление пароля: проверяет код,
// совпадение подтверждения и атомарно ставит новый пароль, очищая код.
func (s *Service) VerifyForgotPasswordCode(ctx context.Context, email, code, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	acc, err := s.repo.GetAccountByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return err
	}

	if acc.RecoveryCodeTag == "" || acc.RecoveryCodeAt == nil {
		return ErrInvalidCode
	}

	// Просроченный код больше никогда не пройдёт проверку — это терминальное
	// состояние, метка сбрасывается. Несовпавший код метку не трогает:
	// у владельца остаётся шанс ввести код правильно в пределах окна.
	if time.Since(*acc.RecoveryCodeAt) > auth.CodeTTL {
		if err := s.repo.ClearRecoveryCode(ctx, acc.ID); err != nil {
			return err
		}
		return ErrInvalidCode
	}

	if !s.codes.Verify(code, acc.RecoveryCodeTag, *acc.RecoveryCodeAt, time.Now()) {
		return ErrInvalidCode
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	return s.repo.CompletePasswordRecovery(ctx, acc.ID, hash)
}

// GetAccountRole возвращает актуальную роль учётной записи из хранилища.
func (s *Service) GetAccountRole(ctx context.Context, accountID int64) (model.Role, bool, error) {
	return s.repo.GetAccountRole(ctx, accountID)
}

// ListAccounts возвращает все учётные записи.
func (s *Service) ListAccounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].PasswordHash = ""
	}
	return accounts, nil
}

// GetAccountByID возвращает учётную запись по идентификатору.
func (s *Service) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	acc, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	acc.PasswordHash = ""
	return acc, nil
}

// DeleteAccount удаляет учётную запись и освобождает её изображение профиля.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	acc, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return err
	}

	if acc.ImagePath != "" {
		if err := s.files.Remove(acc.ImagePath); err != nil {
			s.logger.Warn("remove account image", zap.Error(err), zap.String("path", acc.ImagePath))
		}
	}
	return nil
}

// ChangeRole меняет роль учётной записи. Допустимы только значения
// SubAdmin и User: роль Admin этим путём не выдаётся и не отбирается.
func (s *Service) ChangeRole(ctx context.Context, accountID int64, roleValue string) error {
	role, ok := model.ParseRole(roleValue)
	if !ok || role == model.RoleAdmin {
		return ErrInvalidRole
	}

	return s.repo.UpdateAccountRole(ctx, accountID, role)
}

// ProfileUpdate описывает частичное обновление профиля: пустые поля
// сохраняют прежние значения.
type ProfileUpdate struct {
	FullName    string
	PhoneNumber string
	DateOfBirth *time.Time
	Address     string
	BloodType   string
	ImagePath   string
}

// UpdateProfile применяет частичное обновление профиля учётной записи.
func (s *Service) UpdateProfile(ctx context.Context, accountID int64, upd ProfileUpdate) (*model.Account, error) {
	acc, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	oldImage := ""
	if upd.FullName != "" {
		acc.FullName = upd.FullName
	}
	if upd.PhoneNumber != "" {
		acc.PhoneNumber = upd.PhoneNumber
	}
	if upd.DateOfBirth != nil {
		acc.DateOfBirth = upd.DateOfBirth
	}
	if upd.Address != "" {
		acc.Address = upd.Address
	}
	if upd.BloodType != "" {
		acc.BloodType = upd.BloodType
	}
	if upd.ImagePath != "" {
		oldImage = acc.ImagePath
		acc.ImagePath = upd.ImagePath
	}

	if err := s.repo.UpdateAccountProfile(ctx, *acc); err != nil {
		return nil, err
	}

	if oldImage != "" {
		if err := s.files.Remove(oldImage); err != nil {
			s.logger.Warn("remove old profile image", zap.Error(err), zap.String("path", oldImage))
		}
	}

	acc.PasswordHash = ""
	return acc, nil
}

// EnsureDefaultAdmin создаёт учётную запись администратора при первом запуске.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	exists, err := s.repo.HasAdminAccount(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}

	_, err = s.repo.CreateAccount(ctx, model.Account{
		FullName:     "Admin",
		PhoneNumber:  "00000000",
		Email:        validation.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	s.logger.Info("default admin created", zap.String("email", email))
	return nil
}

// CreateDonation создаёт предмет пожертвования.
func (s *Service) CreateDonation(ctx context.Context, item model.DonationItem) (*model.DonationItem, error) {
	if item.Quantity < 0 {
		item.Quantity = 0
	}

	id, err := s.repo.CreateDonationItem(ctx, item)
	if err != nil {
		return nil, err
	}

	item.ID = id
	return &item, nil
}

// ListDonations возвращает все предметы пожертвований.
func (s *Service) ListDonations(ctx context.Context) ([]model.DonationItem, error) {
	return s.repo.ListDonationItems(ctx)
}

// GetDonationByID возвращает предмет пожертвования по идентификатору.
func (s *Service) GetDonationByID(ctx context.Context, id int64) (*model.DonationItem, error) {
	return s.repo.GetDonationItemByID(ctx, id)
}

// DonationUpdate описывает частичное обновление предмета пожертвования.
type DonationUpdate struct {
	Name        string
	Price       *float64
	Description string
	Quantity    *int
	ImagePath   string
}

// UpdateDonation применяет частичное обновление предмета и освобождает
// старое изображение при замене.
func (s *Service) UpdateDonation(ctx context.Context, id int64, upd DonationUpdate) (*model.DonationItem, error) {
	item, err := s.repo.GetDonationItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldImage := ""
	if upd.Name != "" {
		item.Name = upd.Name
	}
	if upd.Price != nil {
		item.Price = *upd.Price
	}
	if upd.Description != "" {
		item.Description = upd.Description
	}
	if upd.Quantity != nil && *upd.Quantity >= 0 {
		item.Quantity = *upd.Quantity
	}
	if upd.ImagePath != "" {
		oldImage = item.ImagePath
		item.ImagePath = upd.ImagePath
	}

	if err := s.repo.UpdateDonationItemFields(ctx, *item); err != nil {
		return nil, err
	}

	if oldImage != "" {
		if err := s.files.Remove(oldImage); err != nil {
			s.logger.Warn("remove old donation image", zap.Error(err), zap.String("path", oldImage))
		}
	}

	return item, nil
}

// DeleteDonation удаляет предмет пожертвования и освобождает его изображение.
func (s *Service) DeleteDonation(ctx context.Context, id int64) error {
	item, err := s.repo.GetDonationItemByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteDonationItem(ctx, id); err != nil {
		return err
	}

	if item.ImagePath != "" {
		if err := s.files.Remove(item.ImagePath); err != nil {
			s.logger.Warn("remove donation image", zap.Error(err), zap.String("path", item.ImagePath))
		}
	}
	return nil
}

// RequestDonation ставит учётную запись в очередь заявок на предмет.
// Переход применяется атомарно в пределах одной записи предмета.
func (s *Service) RequestDonation(ctx context.Context, itemID, accountID int64) (*model.DonationItem, error) {
	acc, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return s.repo.UpdateDonationItem(ctx, itemID, func(item model.DonationItem) (model.DonationItem, error) {
		return donation.Request(item, acc.ID, acc.FullName, acc.Email, time.Now())
	})
}

// AcceptDonation принимает заявку: остаток уменьшается на единицу,
// очередь очищается целиком.
func (s *Service) AcceptDonation(ctx context.Context, itemID int64) (*model.DonationItem, error) {
	return s.repo.UpdateDonationItem(ctx, itemID, donation.Accept)
}

// RejectDonation отклоняет заявки: очередь очищается, остаток не меняется.
func (s *Service) RejectDonation(ctx context.Context, itemID int64) (*model.DonationItem, error) {
	return s.repo.UpdateDonationItem(ctx, itemID, donation.Reject)
}
