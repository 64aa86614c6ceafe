package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/store"
	"github.com/canteenhq/canteen/pkg/slogx"
)

var ErrMissingUserID = errors.New("user id is required")

// UserService exposes account reads and the privileged delete operation.
type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// GetUserByEmpCode resolves an employee code to an account. Used for transfer
// receiver previews.
func (s *UserService) GetUserByEmpCode(ctx context.Context, empCode string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmpCode(ctx, empCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// DeleteUser removes an account. The HTTP layer enforces that the caller is
// an admin; this method still validates the target id so a missing identifier
// and a missing account stay distinct failures.
func (s *UserService) DeleteUser(ctx context.Context, targetID string) error {
	log := slogx.FromContext(ctx)

	// 1. The identifier is mandatory.
	if targetID == "" {
		return ErrMissingUserID
	}

	// 2. Delete. Orders survive the deletion; they are denormalized at
	// submission time and deliberately carry no foreign key to users.
	if err := s.Store.Users().DeleteUser(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to delete user", slog.String("target_id", targetID), slog.Any("error", err))
		return err
	}

	log.Info("user deleted", slog.String("target_id", targetID))
	return nil
}
