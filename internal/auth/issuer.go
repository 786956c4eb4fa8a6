package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/notification-service/internal/domain"
)

// ErrEmptySubject is returned when asked to mint tokens for an identity without a subject.
var ErrEmptySubject = errors.New("identity has empty subject")

// TokenIssuer mints access/refresh pairs that share claims and differ only in expiry.
type TokenIssuer struct {
	codec      *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer builds an issuer. Non-positive TTLs fall back to 1h and 6h.
func NewTokenIssuer(codec *TokenCodec, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 6 * time.Hour
	}
	return &TokenIssuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL, now: codec.now}
}

// Issue signs a fresh pair for identity, recording issuingContext as the issuer.
func (ti *TokenIssuer) Issue(identity domain.Identity, issuingContext string) (domain.TokenPair, error) {
	if identity.Subject == "" {
		return domain.TokenPair{}, ErrEmptySubject
	}

	now := ti.now()
	accessExp := now.Add(ti.accessTTL)
	refreshExp := now.Add(ti.refreshTTL)

	access, err := ti.codec.Sign(NewClaims(identity.Subject, identity.Roles, issuingContext, accessExp))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := ti.codec.Sign(NewClaims(identity.Subject, identity.Roles, issuingContext, refreshExp))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (ti *TokenIssuer) AccessTTL() time.Duration {
	return ti.accessTTL
}
