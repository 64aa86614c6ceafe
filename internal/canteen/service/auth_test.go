package service

import (
	"context"
	"testing"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func testTokens() *jwtx.TokenManager {
	return jwtx.NewTokenManager("test-secret-at-least-32-bytes-long!!", "canteen-test", time.Hour)
}

func TestRegisterAndSignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &AuthService{Store: st, Tokens: testTokens()}

	u, err := svc.Register(ctx, "priya@example.test", "s3cret-passphrase", "EMP300", "Priya", "Nair", "Design")
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, u.Role)
	require.Equal(t, 0, u.Coins, "coins arrive on first reconcile, not at signup")

	token, signedIn, err := svc.SignIn(ctx, "priya@example.test", "s3cret-passphrase")
	require.NoError(t, err)
	require.Equal(t, u.ID, signedIn.ID)

	claims, err := svc.Tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, string(domain.RoleMember), claims.Role)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &AuthService{Store: st, Tokens: testTokens()}

	_, err := svc.Register(ctx, "sam@example.test", "s3cret-passphrase", "EMP301", "Sam", "Ortiz", "Ops")
	require.NoError(t, err)

	// Wrong password and unknown email produce the same error.
	_, _, err = svc.SignIn(ctx, "sam@example.test", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.SignIn(ctx, "nobody@example.test", "s3cret-passphrase")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &AuthService{Store: st, Tokens: testTokens()}

	_, err := svc.Register(ctx, "not-an-email", "s3cret-passphrase", "EMP302", "A", "B", "Ops")
	require.ErrorIs(t, err, ErrInvalidRegistration)

	_, err = svc.Register(ctx, "short@example.test", "tiny", "EMP302", "A", "B", "Ops")
	require.ErrorIs(t, err, ErrInvalidRegistration)

	_, err = svc.Register(ctx, "blank@example.test", "s3cret-passphrase", "", "A", "B", "Ops")
	require.ErrorIs(t, err, ErrInvalidRegistration)
}

func TestResetPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &AuthService{Store: st, Tokens: testTokens()}

	u, err := svc.Register(ctx, "lena@example.test", "s3cret-passphrase", "EMP305", "Lena", "Berg", "Finance")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, u.ID, "brand-new-passphrase"))

	// Only the new password signs in now.
	_, _, err = svc.SignIn(ctx, "lena@example.test", "s3cret-passphrase")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, signedIn, err := svc.SignIn(ctx, "lena@example.test", "brand-new-passphrase")
	require.NoError(t, err)
	require.Equal(t, u.ID, signedIn.ID)

	// Same strength floor as registration.
	require.ErrorIs(t, svc.ResetPassword(ctx, u.ID, "tiny"), ErrWeakPassword)

	require.ErrorIs(t, svc.ResetPassword(ctx, "no-such-user", "brand-new-passphrase"), ErrUserNotFound)
}

func TestRegisterUniqueness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &AuthService{Store: st, Tokens: testTokens()}

	_, err := svc.Register(ctx, "kai@example.test", "s3cret-passphrase", "EMP303", "Kai", "Wong", "Eng")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "kai@example.test", "s3cret-passphrase", "EMP304", "Kai", "Wong", "Eng")
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, "kai2@example.test", "s3cret-passphrase", "EMP303", "Kai", "Wong", "Eng")
	require.ErrorIs(t, err, ErrEmpCodeTaken)
}
