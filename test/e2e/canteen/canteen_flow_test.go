package canteen_test

import (
	"strings"
	"testing"

	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/stretchr/testify/require"
)

// TestFullCanteenFlow walks the whole happy path on a single instance: admin
// builds the menu, a member receives the daily allowance, orders lunch,
// transfers coins to a colleague, and the admin reads the report.
func TestFullCanteenFlow(t *testing.T) {
	baseURL, cleanup := setupCanteenContainer(t)
	defer cleanup()

	admin := signInAdmin(t, baseURL)

	// Admin creates the menu.
	dish, err := admin.CreateMenuItem(t.Context(), canteensdk.MenuItemRequest{
		Name:    "Pad Thai",
		Emoji:   "🍜",
		Tagline: "wok-fresh",
		Price:   25,
	})
	require.NoError(t, err)

	// Members sign up and get today's allowance via reconcile.
	alice := registerMember(t, baseURL, "EMP500")
	bob := registerMember(t, baseURL, "EMP501")

	coins, err := alice.ReconcileBalance(t.Context())
	require.NoError(t, err)
	require.Equal(t, 75, coins)

	coins, err = bob.ReconcileBalance(t.Context())
	require.NoError(t, err)
	require.Equal(t, 75, coins)

	// Reconcile is idempotent within the day.
	coins, err = alice.ReconcileBalance(t.Context())
	require.NoError(t, err)
	require.Equal(t, 75, coins)

	// Alice orders lunch. The order records the spend but does not debit.
	order, err := alice.SubmitOrder(t.Context(), canteensdk.OrderRequest{
		Items: []canteensdk.OrderLineRequest{{MenuItemID: dish.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 50, order.CoinsUsed)

	me, err := alice.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, 75, me.Coins, "ordering must not debit coins")

	// Alice sends Bob 30 coins by employee code.
	transfer, err := alice.Transfer(t.Context(), "EMP501", 30)
	require.NoError(t, err)
	require.Equal(t, "completed", transfer.Transfer.State)
	require.Equal(t, 45, transfer.Coins)

	// Bob already reconciled today, so the credited coins survive his next
	// reconcile.
	bobMe, err := bob.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, 105, bobMe.Coins)

	// Admin sees the order in the list and the CSV export.
	orders, err := admin.ListOrders(t.Context(), "", "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 50, orders[0].CoinsUsed)

	csv, err := admin.ExportOrdersCSV(t.Context())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(csv), "First Name,Last Name,Department,Coins Used,Order Time"))
	require.Contains(t, string(csv), "Member,EMP500,Engineering,50,")

	// No orphaned transfers after a clean run.
	orphans, err := admin.OrphanedTransfers(t.Context())
	require.NoError(t, err)
	require.Empty(t, orphans)
}

// TestTransferValidation exercises the transfer error taxonomy end to end.
func TestTransferValidation(t *testing.T) {
	baseURL, cleanup := setupCanteenContainer(t)
	defer cleanup()

	alice := registerMember(t, baseURL, "EMP510")
	_ = registerMember(t, baseURL, "EMP511")

	_, err := alice.ReconcileBalance(t.Context())
	require.NoError(t, err)

	cases := []struct {
		name     string
		receiver string
		amount   int
		code     string
	}{
		{"zero amount", "EMP511", 0, canteensdk.ErrorCodeInvalidRequest},
		{"negative amount", "EMP511", -5, canteensdk.ErrorCodeInvalidRequest},
		{"unknown receiver", "EMP999", 10, canteensdk.ErrorCodeNotFound},
		{"self send", "EMP510", 10, canteensdk.ErrorCodeInvalidRequest},
		{"overdraw", "EMP511", 76, canteensdk.ErrorCodeInsufficientFunds},
	}
	for _, tc := range cases {
		_, err := alice.Transfer(t.Context(), tc.receiver, tc.amount)
		require.Error(t, err, tc.name)
		apiErr, ok := err.(*canteensdk.APIError)
		require.True(t, ok, tc.name)
		require.Equal(t, tc.code, apiErr.Code, tc.name)
	}

	// Balance untouched by the failed attempts.
	coins, err := alice.ReconcileBalance(t.Context())
	require.NoError(t, err)
	require.Equal(t, 75, coins)
}

// TestAdminBoundaries verifies members cannot reach admin-only endpoints and
// that privileged deletion works for admins.
func TestAdminBoundaries(t *testing.T) {
	baseURL, cleanup := setupCanteenContainer(t)
	defer cleanup()

	admin := signInAdmin(t, baseURL)
	member := registerMember(t, baseURL, "EMP520")

	// Member is refused everywhere admin-only.
	_, err := member.ListOrders(t.Context(), "", "")
	requireAPIError(t, err, canteensdk.ErrorCodePermissionDenied)

	_, err = member.CreateMenuItem(t.Context(), canteensdk.MenuItemRequest{Name: "Nope", Price: 1})
	requireAPIError(t, err, canteensdk.ErrorCodePermissionDenied)

	err = member.DeleteUser(t.Context(), "anyone")
	requireAPIError(t, err, canteensdk.ErrorCodePermissionDenied)

	// Admin deletes the member; the account is gone but can re-register.
	me, err := member.Me(t.Context())
	require.NoError(t, err)

	require.NoError(t, admin.DeleteUser(t.Context(), me.User.ID))

	_, err = member.Me(t.Context())
	requireAPIError(t, err, canteensdk.ErrorCodeNotFound)

	err = admin.DeleteUser(t.Context(), me.User.ID)
	requireAPIError(t, err, canteensdk.ErrorCodeNotFound)
}

func requireAPIError(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)
	apiErr, ok := err.(*canteensdk.APIError)
	require.True(t, ok, "expected *canteensdk.APIError, got %T: %v", err, err)
	require.Equal(t, code, apiErr.Code)
}
