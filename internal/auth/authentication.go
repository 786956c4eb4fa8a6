package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/notification-service/internal/api/dto"
	"github.com/spec-kit/notification-service/internal/domain"
	"github.com/spec-kit/notification-service/internal/events"
	"github.com/spec-kit/notification-service/internal/observability"
	apperrors "github.com/spec-kit/notification-service/pkg/util"
)

// LoginRejectedMessage is the only message a failed login ever returns.
const LoginRejectedMessage = "not authorized"

// CredentialVerifier resolves a username/password pair into an identity.
// Unknown users and wrong passwords both yield domain.ErrInvalidCredentials.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (domain.Identity, error)
}

// AttemptLimiter throttles repeated login failures per username.
type AttemptLimiter interface {
	Blocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// LoginOptions carries the optional collaborators of the AuthenticationGate.
type LoginOptions struct {
	Limiter AttemptLimiter
	Events  events.Dispatcher
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// AuthenticationGate exchanges credentials for a token pair.
type AuthenticationGate struct {
	verifier CredentialVerifier
	issuer   *TokenIssuer
	limiter  AttemptLimiter
	events   events.Dispatcher
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAuthenticationGate constructs the login handler.
func NewAuthenticationGate(verifier CredentialVerifier, issuer *TokenIssuer, opts LoginOptions) *AuthenticationGate {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthenticationGate{
		verifier: verifier,
		issuer:   issuer,
		limiter:  opts.Limiter,
		events:   opts.Events,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// Handle serves POST /login.
func (g *AuthenticationGate) Handle(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ctx := c.UserContext()
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return g.rejectLogin(c, username)
	}

	if g.isLocked(ctx, username) {
		g.metrics.RecordLogin(observability.LoginLocked)
		g.publish(ctx, events.Event{Type: events.EventLoginLocked, Subject: username, Path: c.Path()})
		return apperrors.NewDomainError("TOO_MANY_ATTEMPTS", "too many login attempts", http.StatusTooManyRequests, nil)
	}

	g.logger.Info("login attempt", zap.String("username", username))
	identity, err := g.verifier.VerifyCredentials(ctx, username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			g.recordFailure(ctx, username)
			return g.rejectLogin(c, username)
		}
		return apperrors.NewInternalError(err)
	}

	pair, err := g.issuer.Issue(identity, IssuingContext(c))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	g.resetFailures(ctx, username)

	g.metrics.RecordLogin(observability.LoginSuccess)
	g.logger.Info("user authenticated, tokens issued", zap.String("subject", identity.Subject))
	g.publish(ctx, events.Event{Type: events.EventLoginSucceeded, Subject: identity.Subject, Path: c.Path()})

	WriteTokenPair(c, pair)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.LoginResponse{
			Subject:          identity.Subject,
			Roles:            identity.Roles,
			AccessExpiresAt:  pair.AccessExpiresAt,
			RefreshExpiresAt: pair.RefreshExpiresAt,
		},
	})
}

func (g *AuthenticationGate) rejectLogin(c *fiber.Ctx, username string) error {
	g.metrics.RecordLogin(observability.LoginRejected)
	g.logger.Warn("login rejected", zap.String("username", username))
	g.publish(c.UserContext(), events.Event{Type: events.EventLoginFailed, Subject: username, Path: c.Path()})
	return apperrors.NewUnauthorized(LoginRejectedMessage)
}

// isLocked fails open: a limiter outage must not lock everybody out.
func (g *AuthenticationGate) isLocked(ctx context.Context, username string) bool {
	if g.limiter == nil {
		return false
	}
	blocked, err := g.limiter.Blocked(ctx, username)
	if err != nil {
		g.logger.Warn("attempt limiter unavailable", zap.Error(err))
		return false
	}
	return blocked
}

func (g *AuthenticationGate) recordFailure(ctx context.Context, username string) {
	if g.limiter == nil {
		return
	}
	if err := g.limiter.RecordFailure(ctx, username); err != nil {
		g.logger.Warn("record login failure", zap.Error(err))
	}
}

func (g *AuthenticationGate) resetFailures(ctx context.Context, username string) {
	if g.limiter == nil {
		return
	}
	if err := g.limiter.Reset(ctx, username); err != nil {
		g.logger.Warn("reset login failures", zap.Error(err))
	}
}

func (g *AuthenticationGate) publish(ctx context.Context, event events.Event) {
	if g.events == nil {
		return
	}
	if err := g.events.Publish(ctx, event); err != nil {
		g.logger.Warn("publish event failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
