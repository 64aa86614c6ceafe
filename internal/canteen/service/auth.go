package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/store"
	"github.com/canteenhq/canteen/pkg/cryptox"
	"github.com/canteenhq/canteen/pkg/idx"
	"github.com/canteenhq/canteen/pkg/jwtx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRegistration = errors.New("invalid registration request")
	ErrEmailTaken          = errors.New("email already registered")
	ErrEmpCodeTaken        = errors.New("employee code already registered")
	ErrWeakPassword        = errors.New("password does not meet the minimum length")
)

// AuthService handles sign-in and account registration. The issued token
// carries the role claim read from the user record at sign-in; capabilities
// are fixed for the session's lifetime.
type AuthService struct {
	Store  store.Store
	Tokens *jwtx.TokenManager
}

// SignIn verifies the password and issues an access token. Unknown email and
// wrong password collapse into the same error so the endpoint doesn't leak
// which emails exist.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Look up the account.
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		log.Error("failed to load user for sign-in", slog.Any("error", err))
		return "", domain.User{}, err
	}

	// 2. Verify the password.
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("failed sign-in attempt", slog.String("user_id", u.ID))
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}

	// 3. Mint the session token with the role claim.
	token, err := s.Tokens.Sign(u.ID, string(u.Role))
	if err != nil {
		log.Error("failed to sign token", slog.Any("error", err))
		return "", domain.User{}, err
	}

	log.Info("user signed in", slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	return token, u, nil
}

// Register creates a new member account. The first allowance reset happens on
// the account's first reconcile, not here.
func (s *AuthService) Register(ctx context.Context, email, password, empCode, firstName, lastName, department string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate inputs.
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, ErrInvalidRegistration
	}
	if len(password) < 8 || empCode == "" || firstName == "" || lastName == "" {
		return domain.User{}, ErrInvalidRegistration
	}

	// 2. Hash the password.
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	// 3. Persist. Uniqueness of email and emp_code is enforced by the store;
	// disambiguate which one collided for a usable client error.
	u := domain.User{
		ID:           idx.New().String(),
		EmpCode:      empCode,
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Department:   department,
		Role:         domain.RoleMember,
		Coins:        0,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			if _, lookupErr := s.Store.Users().GetUserByEmail(ctx, email); lookupErr == nil {
				return domain.User{}, ErrEmailTaken
			}
			return domain.User{}, ErrEmpCodeTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("user registered", slog.String("user_id", u.ID), slog.String("emp_code", empCode))
	return u, nil
}

// ResetPassword replaces a user's password with a new one chosen by an
// administrator. There is no email round-trip here; members who forget their
// password ask the canteen admin, who hands them the new one out of band.
func (s *AuthService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	log := slogx.FromContext(ctx)

	// 1. Same strength floor as registration.
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	// 2. Hash and persist.
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}
	if err := s.Store.Users().UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to update password", slog.Any("error", err))
		return err
	}

	log.Info("password reset", slog.String("user_id", userID))
	return nil
}

// EnsureAdmin creates the configured admin account if it doesn't exist yet.
// Called once at startup; a concurrent instance winning the insert race is
// treated as success.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, empCode string) error {
	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	u := domain.User{
		ID:           idx.New().String(),
		EmpCode:      empCode,
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Canteen",
		LastName:     "Admin",
		Department:   "Operations",
		Role:         domain.RoleAdmin,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	slogx.FromContext(ctx).Info("admin account created", slog.String("user_id", u.ID))
	return nil
}
