package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeleteUserRemovesAccountButKeepsOrders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	u := seedUser(t, st, "EMP400", 75)
	item := seedMenuItem(t, st, "Bibimbap", 30)

	orders := &OrderService{Store: st}
	placed, err := orders.Submit(ctx, u.ID, []CartLine{{MenuItemID: item.ID, Quantity: 1}})
	require.NoError(t, err)

	users := &UserService{Store: st}
	require.NoError(t, users.DeleteUser(ctx, u.ID))

	_, err = users.GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	// Order history survives account deletion.
	got, err := orders.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.Len(t, got.Items, 1)
}

func TestDeleteUserDistinguishesFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	users := &UserService{Store: st}

	require.ErrorIs(t, users.DeleteUser(ctx, ""), ErrMissingUserID)
	require.ErrorIs(t, users.DeleteUser(ctx, "no-such-id"), ErrUserNotFound)
}

func TestGetUserByEmpCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	u := seedUser(t, st, "EMP410", 75)

	users := &UserService{Store: st}
	got, err := users.GetUserByEmpCode(ctx, "EMP410")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = users.GetUserByEmpCode(ctx, "EMP999")
	require.ErrorIs(t, err, ErrUserNotFound)
}
