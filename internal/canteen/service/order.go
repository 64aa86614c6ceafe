package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/notify"
	"github.com/canteenhq/canteen/internal/canteen/store"
	"github.com/canteenhq/canteen/pkg/idx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMenuItemNotFound = errors.New("menu item not found")
)

// OrderService records checkouts. Orders are immutable and denormalized:
// placer profile fields and line-item names/prices are copied at submission
// time so later edits to users or the menu never rewrite history. Submitting
// an order records the intended spend but does not debit coins.
type OrderService struct {
	Store store.Store
	Hub   *notify.Hub
}

// CartLine is one requested menu item with quantity.
type CartLine struct {
	MenuItemID string
	Quantity   int
}

// OrderFilter narrows ListOrders results. Zero values mean no filtering.
type OrderFilter struct {
	// Name matches case-insensitively against the placer's first or last name.
	Name string
	// Date restricts to orders placed on that calendar date (in Date's location).
	Date *time.Time
}

// Submit validates the cart against the current menu snapshot and persists
// the order with its line items atomically.
func (s *OrderService) Submit(ctx context.Context, userID string, cart []CartLine) (domain.Order, error) {
	log := slogx.FromContext(ctx)

	// 1. Reject carts with no positive quantities before touching the store.
	// Zero-priced lines are caught after pricing in step 3.
	quantities := 0
	for _, line := range cart {
		if line.Quantity > 0 {
			quantities += line.Quantity
		}
	}
	if quantities == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	// 2. Load the placer for the denormalized profile fields.
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, ErrUserNotFound
		}
		return domain.Order{}, err
	}

	// 3. Price every line from the current menu. Unknown IDs fail the whole
	// submission; a stale client re-fetches the menu and retries.
	order := domain.Order{
		ID:         idx.New().String(),
		UserID:     u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Department: u.Department,
		CreatedAt:  time.Now().UTC(),
	}
	for _, line := range cart {
		if line.Quantity <= 0 {
			continue
		}
		item, err := s.Store.MenuItems().GetMenuItemByID(ctx, line.MenuItemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Order{}, ErrMenuItemNotFound
			}
			return domain.Order{}, err
		}
		order.Items = append(order.Items, domain.OrderItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: line.Quantity,
		})
		order.CoinsUsed += item.Price * line.Quantity
	}

	// A cart priced at zero is an empty cart: items may legitimately cost 0,
	// but an order that records no spend is noise in the report.
	if order.CoinsUsed == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	// 4. Persist order + line items in one transaction.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Orders().CreateOrder(ctx, order)
	})
	if err != nil {
		log.Error("failed to persist order",
			slog.String("order_id", order.ID),
			slog.Any("error", err),
		)
		return domain.Order{}, err
	}

	log.Info("order submitted",
		slog.String("order_id", order.ID),
		slog.String("user_id", u.ID),
		slog.Int("coins_used", order.CoinsUsed),
		slog.Int("lines", len(order.Items)),
	)

	if s.Hub != nil {
		s.Hub.Publish(notify.Event{Topic: notify.TopicOrders, Kind: "created", Payload: order})
	}
	return order, nil
}

// GetOrder returns a single order with its line items.
func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	o, err := s.Store.Orders().GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, store.ErrNotFound
		}
		return domain.Order{}, err
	}
	return o, nil
}

// ListOrders returns orders newest first, optionally filtered by placer name
// substring and calendar date.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	orders, err := s.Store.Orders().ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Name == "" && filter.Date == nil {
		return orders, nil
	}

	name := strings.ToLower(filter.Name)
	filtered := orders[:0]
	for _, o := range orders {
		if name != "" &&
			!strings.Contains(strings.ToLower(o.FirstName), name) &&
			!strings.Contains(strings.ToLower(o.LastName), name) {
			continue
		}
		if filter.Date != nil && !sameDay(o.CreatedAt, *filter.Date, filter.Date.Location()) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered, nil
}

// ExportCSV streams the filtered order list as a CSV report.
func (s *OrderService) ExportCSV(ctx context.Context, filter OrderFilter, w io.Writer) error {
	orders, err := s.ListOrders(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"First Name", "Last Name", "Department", "Coins Used", "Order Time"}); err != nil {
		return err
	}
	for _, o := range orders {
		record := []string{
			o.FirstName,
			o.LastName,
			o.Department,
			strconv.Itoa(o.CoinsUsed),
			o.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
