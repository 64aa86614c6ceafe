package service

import (
	"context"
	"testing"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/notify"
	"github.com/canteenhq/canteen/internal/canteen/store"

	"github.com/stretchr/testify/require"
)

func TestMenuCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &MenuService{Store: st}

	created, err := svc.Create(ctx, "Pho", "🍲", "beef broth", 35)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	updated, err := svc.Update(ctx, created.ID, "Pho Bo", "🍲", "slow-cooked", 40)
	require.NoError(t, err)
	require.Equal(t, "Pho Bo", updated.Name)
	require.Equal(t, 40, updated.Price)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))

	items, err = svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestMenuValidationAndNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &MenuService{Store: st}

	_, err := svc.Create(ctx, "", "🍕", "", 10)
	require.ErrorIs(t, err, ErrInvalidMenuItem)

	_, err = svc.Create(ctx, "Pizza", "🍕", "", -1)
	require.ErrorIs(t, err, ErrInvalidMenuItem)

	_, err = svc.Update(ctx, "no-such-id", "Pizza", "🍕", "", 10)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, "no-such-id"), store.ErrNotFound)
}

func TestMenuMutationsNotifyWatchers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	hub := notify.NewHub()
	svc := &MenuService{Store: st, Hub: hub}

	ch, cancel := hub.Subscribe(notify.TopicMenu, 4)
	defer cancel()

	_, err := svc.Create(ctx, "Dumplings", "🥟", "steamed", 20)
	require.NoError(t, err)

	select {
	case ev := <-ch:
		require.Equal(t, "created", ev.Kind)
		snapshot, ok := ev.Payload.([]domain.MenuItem)
		require.True(t, ok)
		require.Len(t, snapshot, 1)
		require.Equal(t, "Dumplings", snapshot[0].Name)
	case <-time.After(time.Second):
		t.Fatal("expected a menu snapshot event")
	}
}
