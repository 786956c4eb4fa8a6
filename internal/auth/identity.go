package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notification-service/internal/domain"
)

const identityKey = "auth_identity"

type identityContextKey struct{}

// RequestIdentity is the verified caller bound to a single request.
type RequestIdentity struct {
	Subject string
	Roles   []string
	// Source tells whether the access or the refresh token admitted the request.
	Source TokenSource
}

// HasRole reports whether the caller carries role.
func (r *RequestIdentity) HasRole(role string) bool {
	for _, have := range r.Roles {
		if have == role {
			return true
		}
	}
	return false
}

func newRequestIdentity(claims *Claims, source TokenSource) *RequestIdentity {
	roles := make([]string, len(claims.Roles))
	copy(roles, claims.Roles)
	return &RequestIdentity{Subject: claims.Subject, Roles: roles, Source: source}
}

// bindIdentity attaches the identity to the fiber locals and the request's user context.
func bindIdentity(c *fiber.Ctx, identity *RequestIdentity) {
	c.Locals(identityKey, identity)
	c.SetUserContext(WithIdentity(c.UserContext(), identity))
}

// IdentityFromCtx retrieves the identity established by the AuthorizationGate.
func IdentityFromCtx(c *fiber.Ctx) (*RequestIdentity, bool) {
	identity, ok := c.Locals(identityKey).(*RequestIdentity)
	return identity, ok && identity != nil
}

// WithIdentity returns a context carrying identity.
func WithIdentity(ctx context.Context, identity *RequestIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the identity for code below the HTTP layer.
func IdentityFromContext(ctx context.Context) (*RequestIdentity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*RequestIdentity)
	return identity, ok && identity != nil
}

func identityOf(r *RequestIdentity) domain.Identity {
	roles := make([]string, len(r.Roles))
	copy(roles, r.Roles)
	return domain.Identity{Subject: r.Subject, Roles: roles}
}
