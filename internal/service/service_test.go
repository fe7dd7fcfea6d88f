package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HasanDroid18/SAWA-Backend/internal/auth"
	"github.com/HasanDroid18/SAWA-Backend/internal/donation"
	"github.com/HasanDroid18/SAWA-Backend/internal/model"
	"github.com/HasanDroid18/SAWA-Backend/internal/repository"
)

type stubRepository struct {
	accounts  map[int64]*model.Account
	donations map[int64]*model.DonationItem
	nextID    int64
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		accounts:  make(map[int64]*model.Account),
		donations: make(map[int64]*model.DonationItem),
		nextID:    1,
	}
}

func (r *stubRepository) Close() error { return nil }

func (r *stubRepository) CreateAccount(_ context.Context, acc model.Account) (int64, error) {
	for _, existing := range r.accounts {
		if existing.Email == acc.Email {
			return 0, repository.ErrEmailExists
		}
		if existing.PhoneNumber == acc.PhoneNumber {
			return 0, repository.ErrPhoneExists
		}
	}
	acc.ID = r.nextID
	r.nextID++
	r.accounts[acc.ID] = &acc
	return acc.ID, nil
}

func (r *stubRepository) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, acc := range r.accounts {
		if acc.Email == email {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (r *stubRepository) GetAccountByID(_ context.Context, id int64) (*model.Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

func (r *stubRepository) GetAccountRole(_ context.Context, id int64) (model.Role, bool, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return "", false, nil
	}
	return acc.Role, true, nil
}

func (r *stubRepository) ListAccounts(_ context.Context) ([]model.Account, error) {
	out := make([]model.Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		out = append(out, *acc)
	}
	return out, nil
}

func (r *stubRepository) DeleteAccount(_ context.Context, id int64) error {
	if _, ok := r.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *stubRepository) UpdateAccountPassword(_ context.Context, id int64, passwordHash string) error {
	acc, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	acc.PasswordHash = passwordHash
	return nil
}

func (r *stubRepository) SetRecoveryCode(_ context.Context, id int64, tag string, issuedAt time.Time) error {
	acc, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	acc.RecoveryCodeTag = tag
	acc.RecoveryCodeAt = &issuedAt
	return nil
}

func (r *stubRepository) ClearRecoveryCode(_ context.Context, id int64) error {
	acc, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	acc.RecoveryCodeTag = ""
	acc.RecoveryCodeAt = nil
	return nil
}

func (r *stubRepository) CompletePasswordRecovery(_ context.Context, id int64, passwordHash string) error {
	acc, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	acc.PasswordHash = passwordHash
	acc.RecoveryCodeTag = ""
	acc.RecoveryCodeAt = nil
	return nil
}

func (r *stubRepository) UpdateAccountRole(_ context.Context, id int64, role model.Role) error {
	acc, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	acc.Role = role
	return nil
}

func (r *stubRepository) UpdateAccountProfile(_ context.Context, upd model.Account) error {
	acc, ok := r.accounts[upd.ID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	upd.PasswordHash = acc.PasswordHash
	upd.Role = acc.Role
	*acc = upd
	return nil
}

func (r *stubRepository) HasAdminAccount(_ context.Context) (bool, error) {
	for _, acc := range r.accounts {
		if acc.Role == model.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRepository) CreateDonationItem(_ context.Context, item model.DonationItem) (int64, error) {
	for _, existing := range r.donations {
		if existing.Name == item.Name {
			return 0, repository.ErrDonationNameExists
		}
	}
	item.ID = r.nextID
	r.nextID++
	r.donations[item.ID] = &item
	return item.ID, nil
}

func (r *stubRepository) GetDonationItemByID(_ context.Context, id int64) (*model.DonationItem, error) {
	item, ok := r.donations[id]
	if !ok {
		return nil, repository.ErrDonationNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *stubRepository) ListDonationItems(_ context.Context) ([]model.DonationItem, error) {
	out := make([]model.DonationItem, 0, len(r.donations))
	for _, item := range r.donations {
		out = append(out, *item)
	}
	return out, nil
}

func (r *stubRepository) UpdateDonationItemFields(_ context.Context, upd model.DonationItem) error {
	item, ok := r.donations[upd.ID]
	if !ok {
		return repository.ErrDonationNotFound
	}
	upd.RequestedBy = item.RequestedBy
	*item = upd
	return nil
}

func (r *stubRepository) DeleteDonationItem(_ context.Context, id int64) error {
	if _, ok := r.donations[id]; !ok {
		return repository.ErrDonationNotFound
	}
	delete(r.donations, id)
	return nil
}

func (r *stubRepository) UpdateDonationItem(_ context.Context, id int64, mutate func(model.DonationItem) (model.DonationItem, error)) (*model.DonationItem, error) {
	item, ok := r.donations[id]
	if !ok {
		return nil, repository.ErrDonationNotFound
	}
	next, err := mutate(*item)
	if err != nil {
		return nil, err
	}
	*item = next
	cp := next
	return &cp, nil
}

type stubMailer struct {
	sentTo   []string
	lastCode string
	err      error
}

func (m *stubMailer) SendRecoveryCode(to, code string) error {
	if m.err != nil {
		return m.err
	}
	m.sentTo = append(m.sentTo, to)
	m.lastCode = code
	return nil
}

type stubFiles struct {
	removed []string
}

func (f *stubFiles) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func newTestService(t *testing.T, repo Repository, mailer MailSender, files FileRemover) *Service {
	t.Helper()

	codes, err := auth.NewCodeIssuer("code-secret")
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer("token-secret")
	require.NoError(t, err)

	// Минимальная стоимость bcrypt, чтобы тесты не тратили время на хеширование.
	return NewService(repo, codes, tokens, mailer, files, 4, zap.NewNop())
}

func TestService_SignupAndSignin(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(t, repo, &stubMailer{}, &stubFiles{})
	ctx := context.Background()

	acc, err := svc.Signup(ctx, "John Doe", "12345678", "John@Example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", acc.Email, "email must be normalized on signup")
	assert.Equal(t, model.RoleUser, acc.Role)
	assert.Empty(t, acc.PasswordHash, "password hash must not leave the service")

	signed, token, err := svc.Signin(ctx, "JOHN@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, acc.ID, signed.ID)
	assert.Empty(t, signed.PasswordHash)
}

func TestService_SigninInvalidCredentials(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(t, repo, &stubMailer{}, &stubFiles{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)

	_, _, err = svc.Signin(ctx, "john@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Signin(ctx, "nobody@example.com", "Passw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email must not be distinguishable from a bad password")
}

func TestService_SignupDuplicates(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(t, repo, &stubMailer{}, &stubFiles{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Jane Doe", "87654321", "john@example.com", "Passw0rd!")
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	_, err = svc.Signup(ctx, "Jane Doe", "12345678", "jane@example.com", "Passw0rd!")
	assert.ErrorIs(t, err, repository.ErrPhoneExists)
}

func TestService_ChangePassword(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(t, repo, &stubMailer{}, &stubFiles{})
	ctx := context.Background()

	acc, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, acc.ID, "wrong-old", "NewPassw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, acc.ID, "Passw0rd!", "NewPassw0rd!")
	require.NoError(t, err)

	_, _, err = svc.Signin(ctx, "john@example.com", "NewPassw0rd!")
	assert.NoError(t, err, "new password must be accepted after the change")
}

func TestService_ForgotPasswordFlow(t *testing.T) {
	repo := newStubRepository()
	mailer := &stubMailer{}
	svc := newTestService(t, repo, mailer, &stubFiles{})
	ctx := context.Background()

	acc, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)

	require.NoError(t, svc.SendForgotPasswordCode(ctx, "john@example.com"))
	require.Len(t, mailer.sentTo, 1)
	assert.Equal(t, "john@example.com", mailer.sentTo[0])

	stored := repo.accounts[acc.ID]
	require.NotEmpty(t, stored.RecoveryCodeTag, "tag must be stored after a successful delivery")
	require.NotNil(t, stored.RecoveryCodeAt)

	err = svc.VerifyForgotPasswordCode(ctx, "john@example.com", mailer.lastCode, "NewPassw0rd!", "NewPassw0rd!")
	require.NoError(t, err)

	assert.Empty(t, stored.RecoveryCodeTag, "code must be single-use")
	assert.Nil(t, stored.RecoveryCodeAt)

	_, _, err = svc.Signin(ctx, "john@example.com", "NewPassw0rd!")
	assert.NoError(t, err)

	err = svc.VerifyForgotPasswordCode(ctx, "john@example.com", mailer.lastCode, "Other0ne!", "Other0ne!")
	assert.ErrorIs(t, err, ErrInvalidCode, "spent code must not be accepted again")
}

func TestService_ForgotPasswordMailFailure(t *testing.T) {
	repo := newStubRepository()
	mailer := &stubMailer{err: errors.New("smtp: connection refused")}
	svc := newTestService(t, repo, mailer, &stubFiles{})
	ctx := context.Background()

	acc, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)

	err = svc.SendForgotPasswordCode(ctx, "john@example.com")
	require.Error(t, err)
	assert.Empty(t, repo.accounts[acc.ID].RecoveryCodeTag,
		"undelivered code must not become verifiable")
}

func TestService_VerifyForgotPasswordCodeRejections(t *testing.T) {
	repo := newStubRepository()
	mailer := &stubMailer{}
	svc := newTestService(t, repo, mailer, &stubFiles{})
	ctx := context.Background()

	acc, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)

	err = svc.VerifyForgotPasswordCode(ctx, "john@example.com", "12345", "NewPassw0rd!", "Different!")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	err = svc.VerifyForgotPasswordCode(ctx, "john@example.com", "12345", "NewPassw0rd!", "NewPassw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCode, "no code was issued for this account")

	require.NoError(t, svc.SendForgotPasswordCode(ctx, "john@example.com"))

	err = svc.VerifyForgotPasswordCode(ctx, "john@example.com", "00000", "NewPassw0rd!", "NewPassw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCode, "wrong code must be rejected")
	assert.NotEmpty(t, repo.accounts[acc.ID].RecoveryCodeTag,
		"a mistyped code must not burn the issued one")

	expired := time.Now().Add(-6 * time.Minute)
	repo.accounts[acc.ID].RecoveryCodeAt = &expired
	err = svc.VerifyForgotPasswordCode(ctx, "john@example.com", mailer.lastCode, "NewPassw0rd!", "NewPassw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCode, "code outside the window must be rejected")
	assert.Empty(t, repo.accounts[acc.ID].RecoveryCodeTag,
		"expired code is terminal and must be cleared")
	assert.Nil(t, repo.accounts[acc.ID].RecoveryCodeAt)
}

func TestService_ChangeRole(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(t, repo, &stubMailer{}, &stubFiles{})
	ctx := context.Background()

	acc, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)

	require.NoError(t, svc.ChangeRole(ctx, acc.ID, "subadmin"))
	assert.Equal(t, model.RoleSubAdmin, repo.accounts[acc.ID].Role)

	require.NoError(t, svc.ChangeRole(ctx, acc.ID, "User"))
	assert.Equal(t, model.RoleUser, repo.accounts[acc.ID].Role)

	assert.ErrorIs(t, svc.ChangeRole(ctx, acc.ID, "Admin"), ErrInvalidRole,
		"admin role must not be granted through role change")
	assert.ErrorIs(t, svc.ChangeRole(ctx, acc.ID, "owner"), ErrInvalidRole)
}

func TestService_UpdateProfilePartial(t *testing.T) {
	repo := newStubRepository()
	files := &stubFiles{}
	svc := newTestService(t, repo, &stubMailer{}, files)
	ctx := context.Background()

	acc, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)
	repo.accounts[acc.ID].ImagePath = "uploads/old.png"

	updated, err := svc.UpdateProfile(ctx, acc.ID, ProfileUpdate{
		Address:   "Beirut",
		ImagePath: "uploads/new.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "John Doe", updated.FullName, "untouched fields must keep old values")
	assert.Equal(t, "12345678", updated.PhoneNumber)
	assert.Equal(t, "Beirut", updated.Address)
	assert.Equal(t, "uploads/new.png", updated.ImagePath)
	assert.Equal(t, []string{"uploads/old.png"}, files.removed, "replaced image must be released")
}

func TestService_EnsureDefaultAdmin(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(t, repo, &stubMailer{}, &stubFiles{})
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin@gmail.com", "Admin@1234"))

	admin, err := repo.GetAccountByEmail(ctx, "admin@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	// Повторный запуск не создаёт второго администратора.
	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin@gmail.com", "Admin@1234"))
	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestService_DonationLifecycle(t *testing.T) {
	repo := newStubRepository()
	files := &stubFiles{}
	svc := newTestService(t, repo, &stubMailer{}, files)
	ctx := context.Background()

	item, err := svc.CreateDonation(ctx, model.DonationItem{
		Name:      "Wheelchair",
		Price:     100,
		Quantity:  2,
		ImagePath: "uploads/wheelchair.png",
	})
	require.NoError(t, err)
	require.NotZero(t, item.ID)

	list, err := svc.ListDonations(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	newPrice := 80.0
	updated, err := svc.UpdateDonation(ctx, item.ID, DonationUpdate{
		Price:     &newPrice,
		ImagePath: "uploads/wheelchair-2.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Wheelchair", updated.Name)
	assert.Equal(t, 80.0, updated.Price)
	assert.Equal(t, []string{"uploads/wheelchair.png"}, files.removed)

	require.NoError(t, svc.DeleteDonation(ctx, item.ID))
	assert.Contains(t, files.removed, "uploads/wheelchair-2.png", "deleting an item must release its image")

	_, err = svc.GetDonationByID(ctx, item.ID)
	assert.ErrorIs(t, err, repository.ErrDonationNotFound)
}

func TestService_RequestAcceptReject(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(t, repo, &stubMailer{}, &stubFiles{})
	ctx := context.Background()

	acc, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)
	other, err := svc.Signup(ctx, "Jane Doe", "87654321", "jane@example.com", "Passw0rd!")
	require.NoError(t, err)

	item, err := svc.CreateDonation(ctx, model.DonationItem{Name: "Crutches", Quantity: 1})
	require.NoError(t, err)

	got, err := svc.RequestDonation(ctx, item.ID, acc.ID)
	require.NoError(t, err)
	require.Len(t, got.RequestedBy, 1)
	assert.Equal(t, "John Doe", got.RequestedBy[0].DisplayName, "queue entry carries the requester's name")
	assert.Equal(t, "john@example.com", got.RequestedBy[0].Contact)

	_, err = svc.RequestDonation(ctx, item.ID, acc.ID)
	assert.ErrorIs(t, err, donation.ErrAlreadyRequested)

	_, err = svc.RequestDonation(ctx, item.ID, other.ID)
	require.NoError(t, err)

	accepted, err := svc.AcceptDonation(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, accepted.Quantity)
	assert.Empty(t, accepted.RequestedBy, "accept must clear the whole queue")

	// Заявки допускаются и при нулевом остатке.
	_, err = svc.RequestDonation(ctx, item.ID, acc.ID)
	require.NoError(t, err)

	_, err = svc.AcceptDonation(ctx, item.ID)
	assert.ErrorIs(t, err, donation.ErrNoStock)

	rejected, err := svc.RejectDonation(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, rejected.Quantity, "reject must not change the quantity")
	assert.Empty(t, rejected.RequestedBy)
}

func TestService_DeleteAccountReleasesImage(t *testing.T) {
	repo := newStubRepository()
	files := &stubFiles{}
	svc := newTestService(t, repo, &stubMailer{}, files)
	ctx := context.Background()

	acc, err := svc.Signup(ctx, "John Doe", "12345678", "john@example.com", "Passw0rd!")
	require.NoError(t, err)
	repo.accounts[acc.ID].ImagePath = "uploads/avatar.png"

	require.NoError(t, svc.DeleteAccount(ctx, acc.ID))
	assert.Equal(t, []string{"uploads/avatar.png"}, files.removed)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, acc.ID), repository.ErrAccountNotFound)
}
