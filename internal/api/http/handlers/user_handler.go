package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notification-service/internal/api/dto"
	"github.com/spec-kit/notification-service/internal/auth"
	"github.com/spec-kit/notification-service/internal/domain"
	apperrors "github.com/spec-kit/notification-service/pkg/util"
)

// IdentityLoader loads a stored identity by username.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, username string) (domain.Identity, error)
}

// UserHandler exposes identity views for authenticated callers.
type UserHandler struct {
	identities IdentityLoader
}

// NewUserHandler constructs handler.
func NewUserHandler(identities IdentityLoader) *UserHandler {
	return &UserHandler{identities: identities}
}

// Me handles GET /user/me.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromCtx(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}
	return c.JSON(fiber.Map{"data": dto.IdentityResponse{Subject: identity.Subject, Roles: identity.Roles}})
}

// Identity handles GET /user/:username/identity.
func (h *UserHandler) Identity(c *fiber.Ctx) error {
	identity, err := h.identities.LoadIdentity(c.UserContext(), c.Params("username"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.IdentityResponse{Subject: identity.Subject, Roles: identity.Roles}})
}
