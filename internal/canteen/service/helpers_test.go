package service

import (
	"context"
	"testing"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/store/drivers/sqlite"
	"github.com/canteenhq/canteen/pkg/cryptox"
	"github.com/canteenhq/canteen/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st *sqlite.Store, empCode string, coins int) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword("correct horse battery")
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		EmpCode:      empCode,
		Email:        empCode + "@example.test",
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     empCode,
		Department:   "Engineering",
		Role:         domain.RoleMember,
		Coins:        coins,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))

	if coins > 0 {
		// CreateUser stores the raw coins value with version 0; stamp a
		// last_reset so allowance logic treats the seed as today's state.
		now := time.Now()
		require.NoError(t, st.Users().ResetAllowance(context.Background(), u.ID, coins, now))
		u.LastReset = &now
		u.BalanceVersion = 1
	}
	return u
}

func seedMenuItem(t *testing.T, st *sqlite.Store, name string, price int) domain.MenuItem {
	t.Helper()

	m := domain.MenuItem{
		ID:      idx.New().String(),
		Name:    name,
		Emoji:   "🍜",
		Tagline: "fresh today",
		Price:   price,
	}
	require.NoError(t, st.MenuItems().CreateMenuItem(context.Background(), m))
	return m
}
