package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notification-service/internal/api/dto"
	"github.com/spec-kit/notification-service/internal/auth"
	apperrors "github.com/spec-kit/notification-service/pkg/util"
)

// AccessHandler exposes token refresh and introspection.
type AccessHandler struct {
	codec *auth.TokenCodec
	gate  *auth.AuthorizationGate
}

// NewAccessHandler constructs handler.
func NewAccessHandler(codec *auth.TokenCodec, gate *auth.AuthorizationGate) *AccessHandler {
	return &AccessHandler{codec: codec, gate: gate}
}

// Refresh handles GET /access/refresh. A still-valid access token is left alone;
// admission through the refresh token always yields a new pair.
func (h *AccessHandler) Refresh(c *fiber.Ctx) error {
	claims, source, err := h.gate.Resolve(c)
	if err != nil {
		return apperrors.NewForbidden("the access and refresh tokens have expired")
	}

	if source == auth.SourceAccess {
		return c.JSON(fiber.Map{"data": dto.RefreshResponse{Rotated: false, Subject: claims.Subject}})
	}

	identity := &auth.RequestIdentity{Subject: claims.Subject, Roles: claims.Roles, Source: source}
	pair, err := h.gate.Rotate(c, identity)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.RefreshResponse{
		Rotated:          true,
		Subject:          claims.Subject,
		AccessExpiresAt:  &pair.AccessExpiresAt,
		RefreshExpiresAt: &pair.RefreshExpiresAt,
	}})
}

// Introspect handles GET /access/auth/:token. The scheme marker is optional.
func (h *AccessHandler) Introspect(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("token"))
	if err != nil {
		return apperrors.NewNotFound("token", nil)
	}
	if token, ok := auth.StripBearer(raw); ok {
		raw = token
	}

	claims, err := h.codec.Verify(raw)
	if err != nil {
		return apperrors.NewNotFound("token", nil)
	}
	return c.JSON(fiber.Map{"data": dto.ClaimsResponse{
		Subject:        claims.Subject,
		Roles:          claims.Roles,
		IssuingContext: claims.IssuingContext(),
		ExpiresAt:      claims.Expiry(),
	}})
}

// Denied handles GET /access/denied.
func (h *AccessHandler) Denied(c *fiber.Ctx) error {
	return apperrors.NewForbidden("you do not have the authority to access this page")
}
