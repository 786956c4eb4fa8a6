package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notification-service/internal/domain"
)

// Header names and scheme marker used for tokens in both directions.
const (
	AccessTokenHeader  = "accessToken"
	RefreshTokenHeader = "refreshToken"
	BearerScheme       = "Bearer"
)

// TokenSource names which token of a pair admitted a request.
type TokenSource string

const (
	SourceAccess  TokenSource = "access"
	SourceRefresh TokenSource = "refresh"
)

// StripBearer removes the scheme marker. ok is false when the marker is absent.
func StripBearer(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], BearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// readToken returns the raw token carried in header, or "" when absent or malformed.
func readToken(c *fiber.Ctx, header string) string {
	token, ok := StripBearer(c.Get(header))
	if !ok {
		return ""
	}
	return token
}

// WriteTokenPair sets both tokens on the response headers.
func WriteTokenPair(c *fiber.Ctx, pair domain.TokenPair) {
	c.Set(AccessTokenHeader, BearerScheme+" "+pair.Access)
	c.Set(RefreshTokenHeader, BearerScheme+" "+pair.Refresh)
}
