package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/notify"
	"github.com/canteenhq/canteen/internal/canteen/store"
	"github.com/canteenhq/canteen/pkg/idx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

var (
	ErrInvalidMenuItem = errors.New("menu item must have a name and a non-negative price")
)

// MenuService manages the dish catalogue. Mutations publish a fresh snapshot
// to menu watchers so open clients re-render without polling.
type MenuService struct {
	Store store.Store
	Hub   *notify.Hub
}

// List returns all menu items, oldest first.
func (s *MenuService) List(ctx context.Context) ([]domain.MenuItem, error) {
	return s.Store.MenuItems().ListMenuItems(ctx)
}

// Create adds a new dish and notifies menu watchers.
func (s *MenuService) Create(ctx context.Context, name, emoji, tagline string, price int) (domain.MenuItem, error) {
	log := slogx.FromContext(ctx)

	if name == "" || price < 0 {
		return domain.MenuItem{}, ErrInvalidMenuItem
	}

	item := domain.MenuItem{
		ID:      idx.New().String(),
		Name:    name,
		Emoji:   emoji,
		Tagline: tagline,
		Price:   price,
	}
	if err := s.Store.MenuItems().CreateMenuItem(ctx, item); err != nil {
		log.Error("failed to create menu item", slog.Any("error", err))
		return domain.MenuItem{}, err
	}
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt

	log.Info("menu item created", slog.String("item_id", item.ID), slog.String("name", name))
	s.publishSnapshot(ctx, "created")
	return item, nil
}

// Update replaces a dish's display fields and price. Historical orders keep
// the values they captured at submission time.
func (s *MenuService) Update(ctx context.Context, id, name, emoji, tagline string, price int) (domain.MenuItem, error) {
	log := slogx.FromContext(ctx)

	if name == "" || price < 0 {
		return domain.MenuItem{}, ErrInvalidMenuItem
	}

	item := domain.MenuItem{
		ID:      id,
		Name:    name,
		Emoji:   emoji,
		Tagline: tagline,
		Price:   price,
	}
	if err := s.Store.MenuItems().UpdateMenuItem(ctx, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.MenuItem{}, store.ErrNotFound
		}
		log.Error("failed to update menu item", slog.String("item_id", id), slog.Any("error", err))
		return domain.MenuItem{}, err
	}

	log.Info("menu item updated", slog.String("item_id", id))
	s.publishSnapshot(ctx, "updated")
	return s.Store.MenuItems().GetMenuItemByID(ctx, id)
}

// Delete removes a dish from the catalogue. Orders that reference it are
// untouched; they carry their own copies of name and price.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.MenuItems().DeleteMenuItem(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		log.Error("failed to delete menu item", slog.String("item_id", id), slog.Any("error", err))
		return err
	}

	log.Info("menu item deleted", slog.String("item_id", id))
	s.publishSnapshot(ctx, "deleted")
	return nil
}

// publishSnapshot pushes the full current menu to watchers. Watchers render
// whole snapshots rather than applying deltas, so a dropped event is harmless.
func (s *MenuService) publishSnapshot(ctx context.Context, kind string) {
	if s.Hub == nil {
		return
	}
	items, err := s.Store.MenuItems().ListMenuItems(ctx)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to load menu snapshot for watchers", slog.Any("error", err))
		return
	}
	s.Hub.Publish(notify.Event{Topic: notify.TopicMenu, Kind: kind, Payload: items})
}
