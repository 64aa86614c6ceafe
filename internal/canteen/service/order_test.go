package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitOrderRecordsDenormalizedSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	u := seedUser(t, st, "EMP200", 75)
	noodles := seedMenuItem(t, st, "Pad Thai", 25)
	soup := seedMenuItem(t, st, "Tom Yum", 15)

	svc := &OrderService{Store: st}
	order, err := svc.Submit(ctx, u.ID, []CartLine{
		{MenuItemID: noodles.ID, Quantity: 2},
		{MenuItemID: soup.ID, Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, 65, order.CoinsUsed)
	require.Len(t, order.Items, 2)
	require.Equal(t, u.FirstName, order.FirstName)
	require.Equal(t, u.Department, order.Department)

	// Submitting must not touch the coin balance.
	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 75, got.Coins)
}

func TestSubmitOrderSurvivesMenuEdits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	u := seedUser(t, st, "EMP201", 75)
	item := seedMenuItem(t, st, "Laksa", 30)

	svc := &OrderService{Store: st}
	order, err := svc.Submit(ctx, u.ID, []CartLine{{MenuItemID: item.ID, Quantity: 1}})
	require.NoError(t, err)

	// Delete the dish, then re-read the order: the captured name and price
	// must be intact.
	require.NoError(t, st.MenuItems().DeleteMenuItem(ctx, item.ID))

	got, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Equal(t, "Laksa", got.Items[0].Name)
	require.Equal(t, 30, got.Items[0].Price)
}

func TestSubmitOrderValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	u := seedUser(t, st, "EMP202", 75)

	svc := &OrderService{Store: st}

	_, err := svc.Submit(ctx, u.ID, nil)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.Submit(ctx, u.ID, []CartLine{{MenuItemID: "whatever", Quantity: 0}})
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.Submit(ctx, u.ID, []CartLine{{MenuItemID: "no-such-item", Quantity: 1}})
	require.ErrorIs(t, err, ErrMenuItemNotFound)

	// A positive quantity of a zero-priced item prices out to nothing and is
	// still an empty cart.
	free := seedMenuItem(t, st, "Tap Water", 0)
	_, err = svc.Submit(ctx, u.ID, []CartLine{{MenuItemID: free.ID, Quantity: 2}})
	require.ErrorIs(t, err, ErrEmptyCart)

	orders, err := svc.ListOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestListOrdersFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	alice := seedUser(t, st, "EMP210", 75)
	bob := seedUser(t, st, "EMP211", 75)
	item := seedMenuItem(t, st, "Banh Mi", 10)

	svc := &OrderService{Store: st}
	_, err := svc.Submit(ctx, alice.ID, []CartLine{{MenuItemID: item.ID, Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, bob.ID, []CartLine{{MenuItemID: item.ID, Quantity: 2}})
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Name filter matches last name case-insensitively (seedUser sets
	// LastName to the emp code).
	byName, err := svc.ListOrders(ctx, OrderFilter{Name: "emp210"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, alice.ID, byName[0].UserID)

	// Date filter: orders were placed today; yesterday matches nothing.
	yesterday := time.Now().AddDate(0, 0, -1)
	byDate, err := svc.ListOrders(ctx, OrderFilter{Date: &yesterday})
	require.NoError(t, err)
	require.Empty(t, byDate)
}

func TestExportCSV(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	u := seedUser(t, st, "EMP220", 75)
	item := seedMenuItem(t, st, "Curry", 40)

	svc := &OrderService{Store: st}
	_, err := svc.Submit(ctx, u.ID, []CartLine{{MenuItemID: item.ID, Quantity: 1}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, OrderFilter{}, &buf))

	out := buf.String()
	require.Contains(t, out, "First Name,Last Name,Department,Coins Used,Order Time")
	require.Contains(t, out, "Test,EMP220,Engineering,40,")
}
