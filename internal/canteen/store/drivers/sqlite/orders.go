package sqlite

import (
	"context"

	"github.com/canteenhq/canteen/internal/canteen/domain"
)

type ordersRepo struct {
	q querier
}

func (r *ordersRepo) CreateOrder(ctx context.Context, o domain.Order) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, first_name, last_name, department, coins_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.FirstName, o.LastName, o.Department, o.CoinsUsed, o.CreatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}

	for _, item := range o.Items {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO order_items (order_id, name, price, quantity) VALUES (?, ?, ?, ?)`,
			o.ID, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ordersRepo) GetOrderByID(ctx context.Context, id string) (domain.Order, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, first_name, last_name, department, coins_used, created_at
		FROM orders WHERE id = ?`, id)

	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.FirstName, &o.LastName, &o.Department, &o.CoinsUsed, &o.CreatedAt)
	if err != nil {
		return domain.Order{}, mapNotFound(err)
	}

	items, err := r.orderItems(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *ordersRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, user_id, first_name, last_name, department, coins_used, created_at
		FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.FirstName, &o.LastName, &o.Department, &o.CoinsUsed, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *ordersRepo) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT name, price, quantity FROM order_items WHERE order_id = ? ORDER BY rowid ASC`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
