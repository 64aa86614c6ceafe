package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, emp_code, email, password_hash, first_name, last_name,
	department, role, coins, balance_version, last_reset, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmpCode(ctx context.Context, empCode string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE emp_code = ?`, empCode)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, emp_code, email, password_hash, first_name, last_name,
			department, role, coins, balance_version, last_reset, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		u.ID, u.EmpCode, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Department, string(u.Role), u.Coins, mapOptionalTime(u.LastReset), now, now,
	)
	return mapUniqueViolation(err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) ResetAllowance(ctx context.Context, userID string, coins int, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users
		SET coins = ?, last_reset = ?, balance_version = balance_version + 1, updated_at = ?
		WHERE id = ?`,
		coins, at, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) DebitCoins(ctx context.Context, userID string, amount int, expectedVersion int64) error {
	// Compare-and-swap: the WHERE clause guards both the version and the
	// balance, so a concurrent writer or an overdraw makes this a no-op.
	res, err := r.q.ExecContext(ctx,
		`UPDATE users
		SET coins = coins - ?, balance_version = balance_version + 1, updated_at = ?
		WHERE id = ? AND balance_version = ? AND coins >= ?`,
		amount, time.Now().UTC(), userID, expectedVersion, amount,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *usersRepo) CreditCoins(ctx context.Context, userID string, amount int) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users
		SET coins = coins + ?, balance_version = balance_version + 1, updated_at = ?
		WHERE id = ?`,
		amount, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		role      string
		lastReset sql.NullTime
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
	u.LastReset = mapNullTimePtr(lastReset)
	return u, nil
}
