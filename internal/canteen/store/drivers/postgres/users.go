package postgres

import (
	"context"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/store"

	"github.com/jackc/pgx/v5"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, emp_code, email, password_hash, first_name, last_name,
	department, role, coins, balance_version, last_reset, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmpCode(ctx context.Context, empCode string) (domain.User, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE emp_code = $1`, empCode)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.q.Exec(ctx,
		`INSERT INTO users (id, emp_code, email, password_hash, first_name, last_name,
			department, role, coins, balance_version, last_reset, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12)`,
		u.ID, u.EmpCode, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Department, string(u.Role), u.Coins, mapTimePtr(u.LastReset), now, now,
	)
	return mapUniqueViolation(err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) ResetAllowance(ctx context.Context, userID string, coins int, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users
		SET coins = $1, last_reset = $2, balance_version = balance_version + 1, updated_at = $3
		WHERE id = $4`,
		coins, at, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) DebitCoins(ctx context.Context, userID string, amount int, expectedVersion int64) error {
	// Compare-and-swap: the WHERE clause guards both the version and the
	// balance, so a concurrent writer or an overdraw makes this a no-op.
	tag, err := r.q.Exec(ctx,
		`UPDATE users
		SET coins = coins - $1, balance_version = balance_version + 1, updated_at = $2
		WHERE id = $3 AND balance_version = $4 AND coins >= $1`,
		amount, time.Now().UTC(), userID, expectedVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *usersRepo) CreditCoins(ctx context.Context, userID string, amount int) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users
		SET coins = coins + $1, balance_version = balance_version + 1, updated_at = $2
		WHERE id = $3`,
		amount, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u         domain.User
		role      string
		lastReset *time.Time
	)
	err := row.Scan(
		&u.ID, &u.EmpCode, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Department, &role, &u.Coins, &u.BalanceVersion, &lastReset,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.LastReset = lastReset
	return u, nil
}
