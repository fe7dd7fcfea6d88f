// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/HasanDroid18/SAWA-Backend/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrEmailExists возвращается при попытке создать учётную запись с занятой почтой.
var (
	ErrEmailExists = errors.New("email already in use")
	// ErrPhoneExists возвращается, если номер телефона уже занят.
	ErrPhoneExists = errors.New("phone number already in use")
	// ErrAccountNotFound возвращается, если учётная запись не найдена.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDonationNotFound возвращается, если предмет пожертвования не найден.
	ErrDonationNotFound = errors.New("donation item not found")
	// ErrDonationNameExists возвращается, если имя предмета пожертвования занято.
	ErrDonationNameExists = errors.New("donation item name already exists")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Если ошибка контекста — выходим сразу
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// Ретраи полезны для Serialization Failure и Deadlocks.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateAccount создаёт новую учётную запись.
func (r *PostgresRepository) CreateAccount(ctx context.Context, acc model.Account) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (full_name, phone_number, email, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		acc.FullName, acc.PhoneNumber, acc.Email, acc.PasswordHash, string(acc.Role),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "phone") {
				return 0, fmt.Errorf("%w: %s", ErrPhoneExists, acc.PhoneNumber)
			}
			return 0, fmt.Errorf("%w: %s", ErrEmailExists, acc.Email)
		}
		return 0, fmt.Errorf("create account: %w", err)
	}
	return id, nil
}

const accountColumns = `id, full_name, phone_number, email, password_hash, role,
	date_of_birth, address, blood_type, image_path,
	recovery_code_tag, recovery_code_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	var role string
	err := row.Scan(
		&a.ID, &a.FullName, &a.PhoneNumber, &a.Email, &a.PasswordHash, &role,
		&a.DateOfBirth, &a.Address, &a.BloodType, &a.ImagePath,
		&a.RecoveryCodeTag, &a.RecoveryCodeAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Role = model.Role(role)
	return &a, nil
}

// GetAccountByEmail возвращает учётную запись по адресу электронной почты.
func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`,
		email,
	)

	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return acc, nil
}

// GetAccountByID возвращает учётную запись по идентификатору.
func (r *PostgresRepository) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`,
		id,
	)

	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return acc, nil
}

// GetAccountRole возвращает актуальную роль учётной записи.
// Используется проверкой доступа на каждом защищённом запросе.
func (r *PostgresRepository) GetAccountRole(ctx context.Context, id int64) (model.Role, bool, error) {
	var role string
	err := r.pool.QueryRow(ctx, `SELECT role FROM accounts WHERE id = $1`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get account role: %w", err)
	}
	return model.Role(role), true, nil
}

// ListAccounts возвращает все учётные записи.
func (r *PostgresRepository) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return accounts, nil
}

// DeleteAccount удаляет учётную запись по идентификатору.
func (r *PostgresRepository) DeleteAccount(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateAccountPassword заменяет хеш пароля учётной записи.
func (r *PostgresRepository) UpdateAccountPassword(ctx context.Context, id int64, passwordHash string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SetRecoveryCode сохраняет HMAC-метку кода восстановления и момент выдачи.
func (r *PostgresRepository) SetRecoveryCode(ctx context.Context, id int64, tag string, issuedAt time.Time) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET recovery_code_tag = $2, recovery_code_at = $3, updated_at = now() WHERE id = $1`,
		id, tag, issuedAt,
	)
	if err != nil {
		return fmt.Errorf("set recovery code: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ClearRecoveryCode сбрасывает код восстановления без смены пароля.
func (r *PostgresRepository) ClearRecoveryCode(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET recovery_code_tag = '', recovery_code_at = NULL, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("clear recovery code: %w", err)
	}
	return nil
}

// CompletePasswordRecovery одним запросом ставит новый хеш пароля и очищает
// код восстановления: использованный код не переживает проверку.
func (r *PostgresRepository) CompletePasswordRecovery(ctx context.Context, id int64, passwordHash string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE accounts
		 SET password_hash = $2, recovery_code_tag = '', recovery_code_at = NULL, updated_at = now()
		 WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("complete password recovery: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateAccountRole меняет роль учётной записи.
func (r *PostgresRepository) UpdateAccountRole(ctx context.Context, id int64, role model.Role) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET role = $2, updated_at = now() WHERE id = $1`,
		id, string(role),
	)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateAccountProfile обновляет профильные поля учётной записи.
func (r *PostgresRepository) UpdateAccountProfile(ctx context.Context, acc model.Account) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE accounts
		 SET full_name = $2, phone_number = $3, date_of_birth = $4,
		     address = $5, blood_type = $6, image_path = $7, updated_at = now()
		 WHERE id = $1`,
		acc.ID, acc.FullName, acc.PhoneNumber, acc.DateOfBirth,
		acc.Address, acc.BloodType, acc.ImagePath,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrPhoneExists, acc.PhoneNumber)
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// HasAdminAccount сообщает, существует ли хотя бы одна учётная запись с ролью Admin.
func (r *PostgresRepository) HasAdminAccount(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE role = $1)`,
		string(model.RoleAdmin),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin exists: %w", err)
	}
	return exists, nil
}

// CreateDonationItem создаёт предмет пожертвования с пустой очередью заявок.
func (r *PostgresRepository) CreateDonationItem(ctx context.Context, item model.DonationItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO donation_items (name, image_path, price, description, quantity, requested_by)
		 VALUES ($1, $2, $3, $4, $5, '[]'::jsonb)
		 RETURNING id`,
		item.Name, item.ImagePath, item.Price, item.Description, item.Quantity,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrDonationNameExists, item.Name)
		}
		return 0, fmt.Errorf("create donation item: %w", err)
	}
	return id, nil
}

const donationColumns = `id, name, image_path, price, description, quantity, requested_by, created_at, updated_at`

func scanDonationItem(row pgx.Row) (*model.DonationItem, error) {
	var item model.DonationItem
	var queue []byte
	err := row.Scan(
		&item.ID, &item.Name, &item.ImagePath, &item.Price, &item.Description,
		&item.Quantity, &queue, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(queue) > 0 {
		if err := json.Unmarshal(queue, &item.RequestedBy); err != nil {
			return nil, fmt.Errorf("decode requester queue: %w", err)
		}
	}
	return &item, nil
}

// GetDonationItemByID возвращает предмет пожертвования по идентификатору.
func (r *PostgresRepository) GetDonationItemByID(ctx context.Context, id int64) (*model.DonationItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+donationColumns+` FROM donation_items WHERE id = $1`,
		id,
	)

	item, err := scanDonationItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("get donation item: %w", err)
	}
	return item, nil
}

// ListDonationItems возвращает все предметы пожертвований.
func (r *PostgresRepository) ListDonationItems(ctx context.Context) ([]model.DonationItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+donationColumns+` FROM donation_items ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("select donation items: %w", err)
	}
	defer rows.Close()

	var items []model.DonationItem
	for rows.Next() {
		item, err := scanDonationItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// UpdateDonationItemFields обновляет описательные поля предмета пожертвования,
// не трогая очередь заявок.
func (r *PostgresRepository) UpdateDonationItemFields(ctx context.Context, item model.DonationItem) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE donation_items
		 SET name = $2, image_path = $3, price = $4, description = $5, quantity = $6, updated_at = now()
		 WHERE id = $1`,
		item.ID, item.Name, item.ImagePath, item.Price, item.Description, item.Quantity,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrDonationNameExists, item.Name)
		}
		return fmt.Errorf("update donation item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrDonationNotFound
	}
	return nil
}

// DeleteDonationItem удаляет предмет пожертвования.
func (r *PostgresRepository) DeleteDonationItem(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM donation_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete donation item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrDonationNotFound
	}
	return nil
}

// UpdateDonationItem атомарно применяет мутацию к одному предмету пожертвования.
// Строка блокируется на время транзакции, поэтому параллельные request/accept/reject
// по одному предмету сериализуются и не могут увести остаток ниже нуля.
// Ошибка мутации откатывает транзакцию и возвращается вызывающей стороне.
func (r *PostgresRepository) UpdateDonationItem(ctx context.Context, id int64, mutate func(model.DonationItem) (model.DonationItem, error)) (*model.DonationItem, error) {
	var updated *model.DonationItem

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		row := tx.QueryRow(ctx,
			`SELECT `+donationColumns+` FROM donation_items WHERE id = $1 FOR UPDATE`,
			id,
		)

		item, err := scanDonationItem(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrDonationNotFound
			}
			return fmt.Errorf("lock donation item: %w", err)
		}

		next, err := mutate(*item)
		if err != nil {
			return err
		}

		queue := next.RequestedBy
		if queue == nil {
			queue = []model.DonationRequest{}
		}
		encoded, err := json.Marshal(queue)
		if err != nil {
			return fmt.Errorf("encode requester queue: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE donation_items SET quantity = $2, requested_by = $3, updated_at = now() WHERE id = $1`,
			id, next.Quantity, encoded,
		)
		if err != nil {
			return fmt.Errorf("update donation item: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
