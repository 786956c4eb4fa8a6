package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when no user matches a username lookup.
	ErrUserNotFound = errors.New("user not found")
)

// TokenPair holds the access and refresh tokens minted in one issuance.
type TokenPair struct {
	Access           string
	Refresh          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
