package postgres

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
	row := r.q.QueryRow(ctx,
		`SELECT id, name, emoji, tagline, price, created_at, updated_at
		FROM menu_items WHERE id = $1`, id)

	var m domain.MenuItem
	if err := row.Scan(&m.ID, &m.Name, &m.Emoji, &m.Tagline, &m.Price, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return domain.MenuItem{}, mapNotFound(err)
	}
	return m, nil
}

func (r *menuItemsRepo) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.q.Query(ctx,
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
	_, err := r.q.Exec(ctx,
		`INSERT INTO menu_items (id, name, emoji, tagline, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Name, m.Emoji, m.Tagline, m.Price, now, now,
	)
	return mapUniqueViolation(err)
}

func (r *menuItemsRepo) UpdateMenuItem(ctx context.Context, m domain.MenuItem) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE menu_items SET name = $1, emoji = $2, tagline = $3, price = $4, updated_at = $5
		WHERE id = $6`,
		m.Name, m.Emoji, m.Tagline, m.Price, time.Now().UTC(), m.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *menuItemsRepo) DeleteMenuItem(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
