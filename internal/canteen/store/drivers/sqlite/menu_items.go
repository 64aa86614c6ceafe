package sqlite

import (
	"context"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/store"
)

type menuItemsRepo struct {
	q querier
}

func (r *menuItemsRepo) GetMenuItemByID(ctx context.Context, id string) (domain.MenuItem, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, emoji, tagline, price, created_at, updated_at
		FROM menu_items WHERE id = ?`, id)

	var m domain.MenuItem
	if err := row.Scan(&m.ID, &m.Name, &m.Emoji, &m.Tagline, &m.Price, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return domain.MenuItem{}, mapNotFound(err)
	}
	return m, nil
}

func (r *menuItemsRepo) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, emoji, tagline, price, created_at, updated_at
		FROM menu_items ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Emoji, &m.Tagline, &m.Price, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *menuItemsRepo) CreateMenuItem(ctx context.Context, m domain.MenuItem) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO menu_items (id, name, emoji, tagline, price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Emoji, m.Tagline, m.Price, now, now,
	)
	return mapUniqueViolation(err)
}

func (r *menuItemsRepo) UpdateMenuItem(ctx context.Context, m domain.MenuItem) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE menu_items SET name = ?, emoji = ?, tagline = ?, price = ?, updated_at = ?
		WHERE id = ?`,
		m.Name, m.Emoji, m.Tagline, m.Price, time.Now().UTC(), m.ID,
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

func (r *menuItemsRepo) DeleteMenuItem(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
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
