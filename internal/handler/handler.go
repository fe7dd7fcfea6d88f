// Package handler содержит HTTP-обработчики API сервиса SAWA.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/HasanDroid18/SAWA-Backend/internal/donation"
	"github.com/HasanDroid18/SAWA-Backend/internal/middleware"
	"github.com/HasanDroid18/SAWA-Backend/internal/model"
	"github.com/HasanDroid18/SAWA-Backend/internal/repository"
	"github.com/HasanDroid18/SAWA-Backend/internal/service"
	"github.com/HasanDroid18/SAWA-Backend/internal/validation"
)

// maxUploadSize ограничивает размер multipart-запроса с изображением.
const maxUploadSize = 10 << 20

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Signup(ctx context.Context, fullName, phoneNumber, email, password string) (*model.Account, error)
	Signin(ctx context.Context, email, password string) (*model.Account, string, error)
	ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error
	SendForgotPasswordCode(ctx context.Context, email string) error
	VerifyForgotPasswordCode(ctx context.Context, email, code, newPassword, confirmPassword string) error
	GetAccountRole(ctx context.Context, accountID int64) (model.Role, bool, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	ChangeRole(ctx context.Context, accountID int64, roleValue string) error
	UpdateProfile(ctx context.Context, accountID int64, upd service.ProfileUpdate) (*model.Account, error)
	CreateDonation(ctx context.Context, item model.DonationItem) (*model.DonationItem, error)
	ListDonations(ctx context.Context) ([]model.DonationItem, error)
	GetDonationByID(ctx context.Context, id int64) (*model.DonationItem, error)
	UpdateDonation(ctx context.Context, id int64, upd service.DonationUpdate) (*model.DonationItem, error)
	DeleteDonation(ctx context.Context, id int64) error
	RequestDonation(ctx context.Context, itemID, accountID int64) (*model.DonationItem, error)
	AcceptDonation(ctx context.Context, itemID int64) (*model.DonationItem, error)
	RejectDonation(ctx context.Context, itemID int64) (*model.DonationItem, error)
}

// Uploader сохраняет загруженный файл и возвращает ссылку-путь.
type Uploader interface {
	Save(src io.Reader, originalName string) (string, error)
	Dir() string
}

// Handler реализует HTTP-обработчики API сервиса SAWA.
type Handler struct {
	service    Service
	logger     *zap.Logger
	identifier *middleware.Identifier
	uploads    Uploader
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, identifier *middleware.Identifier, uploads Uploader) *Handler {
	return &Handler{
		service:    s,
		logger:     logger,
		identifier: identifier,
		uploads:    uploads,
	}
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, messageResponse{Success: status < http.StatusBadRequest, Message: message})
}

// writeError отображает ошибку слоя бизнес-логики на HTTP-статус.
// Неопознанные ошибки логируются и отдаются как 500 без деталей.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrPhoneExists),
		errors.Is(err, repository.ErrDonationNameExists),
		errors.Is(err, donation.ErrAlreadyRequested),
		errors.Is(err, donation.ErrNoStock):
		h.writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrAccountNotFound),
		errors.Is(err, repository.ErrDonationNotFound):
		h.writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrInvalidRole):
		h.writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		h.writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

type accountResponse struct {
	ID          int64  `json:"id"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address,omitempty"`
	BloodType   string `json:"bloodType,omitempty"`
	Image       string `json:"image,omitempty"`
}

func toAccountResponse(acc *model.Account) accountResponse {
	resp := accountResponse{
		ID:          acc.ID,
		FullName:    acc.FullName,
		PhoneNumber: acc.PhoneNumber,
		Email:       acc.Email,
		Role:        string(acc.Role),
		Address:     acc.Address,
		BloodType:   acc.BloodType,
		Image:       acc.ImagePath,
	}
	if acc.DateOfBirth != nil {
		resp.DateOfBirth = acc.DateOfBirth.Format("2006-01-02")
	}
	return resp
}

type donationResponse struct {
	ID          int64                   `json:"id"`
	Name        string                  `json:"name"`
	Image       string                  `json:"image,omitempty"`
	Price       float64                 `json:"price"`
	Description string                  `json:"description,omitempty"`
	Quantity    int                     `json:"quantity"`
	RequestedBy []model.DonationRequest `json:"requestedBy"`
	CreatedAt   string                  `json:"createdAt"`
	UpdatedAt   string                  `json:"updatedAt"`
}

func toDonationResponse(item *model.DonationItem) donationResponse {
	requestedBy := item.RequestedBy
	if requestedBy == nil {
		requestedBy = []model.DonationRequest{}
	}
	return donationResponse{
		ID:          item.ID,
		Name:        item.Name,
		Image:       item.ImagePath,
		Price:       item.Price,
		Description: item.Description,
		Quantity:    item.Quantity,
		RequestedBy: requestedBy,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.Format(time.RFC3339),
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type signupRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// Signup регистрирует новую учётную запись с ролью User.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case !validation.IsValidFullName(req.FullName):
		h.writeMessage(w, http.StatusBadRequest, "full name must be between 3 and 50 characters")
		return
	case !validation.IsValidPhoneNumber(req.PhoneNumber):
		h.writeMessage(w, http.StatusBadRequest, "phone number must be exactly 8 digits")
		return
	case !validation.IsValidEmail(req.Email):
		h.writeMessage(w, http.StatusBadRequest, "invalid email address")
		return
	case !validation.IsValidPassword(req.Password):
		h.writeMessage(w, http.StatusBadRequest, "password must be at least 8 characters and contain a special character")
		return
	}

	acc, err := h.service.Signup(r.Context(), req.FullName, req.PhoneNumber, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		User    accountResponse `json:"user"`
	}{true, "user created successfully", toAccountResponse(acc)})
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signin проверяет учётные данные, выпускает сессионный токен и ставит
// cookie авторизации. Токен дублируется в теле ответа для небраузерных клиентов.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		h.writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}

	acc, token, err := h.service.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	middleware.SetAuthCookie(w, token)
	h.writeJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Token   string          `json:"token"`
		User    accountResponse `json:"user"`
	}{true, "signed in successfully", token, toAccountResponse(acc)})
}

// Signout сбрасывает cookie авторизации. Токен не отзывается: сервер не ведёт
// списка сессий, выход — это забывание токена клиентом.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAuthCookie(w)
	h.writeMessage(w, http.StatusOK, "signed out successfully")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword меняет пароль текущего пользователя после проверки старого.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OldPassword == "" || !validation.IsValidPassword(req.NewPassword) {
		h.writeMessage(w, http.StatusBadRequest, "new password must be at least 8 characters and contain a special character")
		return
	}

	if err := h.service.ChangePassword(r.Context(), claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "password changed successfully")
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// SendForgotPasswordCode выпускает одноразовый код восстановления и
// отправляет его на почту учётной записи.
func (h *Handler) SendForgotPasswordCode(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !validation.IsValidEmail(req.Email) {
		h.writeMessage(w, http.StatusBadRequest, "invalid email address")
		return
	}

	if err := h.service.SendForgotPasswordCode(r.Context(), req.Email); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "forgot password code sent to email")
}

type verifyForgotPasswordRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// VerifyForgotPasswordCode завершает восстановление пароля по коду.
func (h *Handler) VerifyForgotPasswordCode(w http.ResponseWriter, r *http.Request) {
	var req verifyForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Code == "" {
		h.writeMessage(w, http.StatusBadRequest, "email and code are required")
		return
	}
	if !validation.IsValidPassword(req.NewPassword) {
		h.writeMessage(w, http.StatusBadRequest, "new password must be at least 8 characters and contain a special character")
		return
	}

	if err := h.service.VerifyForgotPasswordCode(r.Context(), req.Email, req.Code, req.NewPassword, req.ConfirmPassword); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "password reset successfully")
}

// GetUsers возвращает все учётные записи.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toAccountResponse(&accounts[i]))
	}

	h.writeJSON(w, http.StatusOK, struct {
		Success bool              `json:"success"`
		Users   []accountResponse `json:"users"`
	}{true, resp})
}

// GetUser возвращает учётную запись по идентификатору.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	acc, err := h.service.GetAccountByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		User    accountResponse `json:"user"`
	}{true, toAccountResponse(acc)})
}

// DeleteUser удаляет учётную запись.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "user deleted successfully")
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateUserRole меняет роль учётной записи. Действует немедленно для новых
// запросов: полномочия всегда перечитываются из хранилища.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ChangeRole(r.Context(), id, req.Role); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "user role updated successfully")
}

// UpdateProfile применяет частичное обновление профиля текущего пользователя.
// Принимает multipart-форму с необязательным файлом image.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	upd := service.ProfileUpdate{
		FullName:    strings.TrimSpace(r.FormValue("fullName")),
		PhoneNumber: strings.TrimSpace(r.FormValue("phoneNumber")),
		Address:     strings.TrimSpace(r.FormValue("address")),
		BloodType:   strings.TrimSpace(r.FormValue("bloodType")),
	}

	if upd.FullName != "" && !validation.IsValidFullName(upd.FullName) {
		h.writeMessage(w, http.StatusBadRequest, "full name must be between 3 and 50 characters")
		return
	}
	if upd.PhoneNumber != "" && !validation.IsValidPhoneNumber(upd.PhoneNumber) {
		h.writeMessage(w, http.StatusBadRequest, "phone number must be exactly 8 digits")
		return
	}

	if dob := r.FormValue("dateOfBirth"); dob != "" {
		parsed, err := time.Parse("2006-01-02", dob)
		if err != nil {
			h.writeMessage(w, http.StatusBadRequest, "date of birth must be in YYYY-MM-DD format")
			return
		}
		upd.DateOfBirth = &parsed
	}

	imagePath, err := h.saveFormImage(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "failed to store uploaded image")
		return
	}
	upd.ImagePath = imagePath

	acc, err := h.service.UpdateProfile(r.Context(), claims.UserID, upd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		User    accountResponse `json:"user"`
	}{true, "profile updated successfully", toAccountResponse(acc)})
}

// saveFormImage сохраняет необязательный файл image из multipart-формы.
// Возвращает пустую ссылку, если файл не был передан.
func (h *Handler) saveFormImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.uploads.Save(file, header.Filename)
}

// CreateDonation создаёт предмет пожертвования из multipart-формы.
func (h *Handler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.writeMessage(w, http.StatusBadRequest, "donation name is required")
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		h.writeMessage(w, http.StatusBadRequest, "price must be a non-negative number")
		return
	}

	quantity := 1
	if q := r.FormValue("quantity"); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil || quantity < 0 {
			h.writeMessage(w, http.StatusBadRequest, "quantity must be a non-negative integer")
			return
		}
	}

	imagePath, err := h.saveFormImage(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "failed to store uploaded image")
		return
	}

	item, err := h.service.CreateDonation(r.Context(), model.DonationItem{
		Name:        name,
		Price:       price,
		Description: strings.TrimSpace(r.FormValue("description")),
		Quantity:    quantity,
		ImagePath:   imagePath,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, struct {
		Success  bool             `json:"success"`
		Message  string           `json:"message"`
		Donation donationResponse `json:"donation"`
	}{true, "donation created successfully", toDonationResponse(item)})
}

// GetAllDonations возвращает все предметы пожертвований.
func (h *Handler) GetAllDonations(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListDonations(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]donationResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toDonationResponse(&items[i]))
	}

	h.writeJSON(w, http.StatusOK, struct {
		Success   bool               `json:"success"`
		Donations []donationResponse `json:"donations"`
	}{true, resp})
}

// GetDonation возвращает предмет пожертвования по идентификатору.
func (h *Handler) GetDonation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	item, err := h.service.GetDonationByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Success  bool             `json:"success"`
		Donation donationResponse `json:"donation"`
	}{true, toDonationResponse(item)})
}

// UpdateDonation применяет частичное обновление предмета пожертвования.
func (h *Handler) UpdateDonation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	upd := service.DonationUpdate{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}

	if p := r.FormValue("price"); p != "" {
		price, err := strconv.ParseFloat(p, 64)
		if err != nil || price < 0 {
			h.writeMessage(w, http.StatusBadRequest, "price must be a non-negative number")
			return
		}
		upd.Price = &price
	}

	if q := r.FormValue("quantity"); q != "" {
		quantity, err := strconv.Atoi(q)
		if err != nil || quantity < 0 {
			h.writeMessage(w, http.StatusBadRequest, "quantity must be a non-negative integer")
			return
		}
		upd.Quantity = &quantity
	}

	imagePath, err := h.saveFormImage(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "failed to store uploaded image")
		return
	}
	upd.ImagePath = imagePath

	item, err := h.service.UpdateDonation(r.Context(), id, upd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Success  bool             `json:"success"`
		Message  string           `json:"message"`
		Donation donationResponse `json:"donation"`
	}{true, "donation updated successfully", toDonationResponse(item)})
}

// DeleteDonation удаляет предмет пожертвования.
func (h *Handler) DeleteDonation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	if err := h.service.DeleteDonation(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "donation deleted successfully")
}

// RequestDonation ставит текущего пользователя в очередь заявок на предмет.
func (h *Handler) RequestDonation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	item, err := h.service.RequestDonation(r.Context(), id, claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Success  bool             `json:"success"`
		Message  string           `json:"message"`
		Donation donationResponse `json:"donation"`
	}{true, "donation requested successfully", toDonationResponse(item)})
}

// AcceptDonation принимает заявку на предмет: остаток уменьшается на единицу,
// очередь заявок очищается целиком.
func (h *Handler) AcceptDonation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	item, err := h.service.AcceptDonation(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Success  bool             `json:"success"`
		Message  string           `json:"message"`
		Donation donationResponse `json:"donation"`
	}{true, "donation accepted successfully", toDonationResponse(item)})
}

// RejectDonation отклоняет заявки на предмет: очередь очищается,
// остаток не меняется.
func (h *Handler) RejectDonation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	item, err := h.service.RejectDonation(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Success  bool             `json:"success"`
		Message  string           `json:"message"`
		Donation donationResponse `json:"donation"`
	}{true, "donation rejected successfully", toDonationResponse(item)})
}
