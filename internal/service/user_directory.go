package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/notification-service/internal/auth"
	"github.com/spec-kit/notification-service/internal/domain"
	"github.com/spec-kit/notification-service/internal/repository"
)

// UserDirectory verifies credentials and loads identities from the user store.
type UserDirectory struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserDirectory builds the directory.
func NewUserDirectory(users repository.UserRepository, bcryptCost int) *UserDirectory {
	return &UserDirectory{users: users, bcryptCost: bcryptCost}
}

// VerifyCredentials returns the identity for a matching username/password pair.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (d *UserDirectory) VerifyCredentials(ctx context.Context, username, password string) (domain.Identity, error) {
	user, err := d.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			auth.CompareDummy(password, d.bcryptCost)
			return domain.Identity{}, errors.Join(domain.ErrInvalidCredentials, err)
		}
		return domain.Identity{}, fmt.Errorf("get user: %w", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	return user.Identity(), nil
}

// LoadIdentity returns the stored identity for username.
func (d *UserDirectory) LoadIdentity(ctx context.Context, username string) (domain.Identity, error) {
	user, err := d.users.GetByUsername(ctx, username)
	if err != nil {
		return domain.Identity{}, err
	}
	return user.Identity(), nil
}
