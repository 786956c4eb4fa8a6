package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spec-kit/notification-service/internal/observability"
	apperrors "github.com/spec-kit/notification-service/pkg/util"
)

// RegisterMiddlewares installs the global chain, outermost first: request logging,
// the error envelope, panic recovery and the request deadline.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorEnvelope(logger, metrics))
	app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, panicValue interface{}) {
			logger.Error("panic recovered",
				zap.String("path", c.Path()),
				zap.Any("panic", panicValue),
				zap.StackSkip("stack", 3))
		},
	}))
	if timeout > 0 {
		app.Use(requestDeadline(timeout))
	}
}

func requestDeadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorEnvelope turns any error returned further down the chain into the
// {"error":{code,message,details}} body and swallows it.
func errorEnvelope(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		domainErr := apperrors.ToDomainError(err)
		metrics.RecordError(domainErr.Code)
		if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
		}
		return writeError(c, domainErr)
	}
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}
