package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/notification-service/internal/domain"
	"github.com/spec-kit/notification-service/internal/events"
	"github.com/spec-kit/notification-service/internal/observability"
	apperrors "github.com/spec-kit/notification-service/pkg/util"
)

// Reasons reported in the details of a rejected request.
const (
	ReasonTokenExpired = "token_expired"
	ReasonTokenInvalid = "token_invalid"
)

// FallbackError is returned when neither token of the pair verifies.
type FallbackError struct {
	AccessErr  error
	RefreshErr error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("access token: %v; refresh token: %v", e.AccessErr, e.RefreshErr)
}

func (e *FallbackError) Unwrap() error {
	return e.RefreshErr
}

// Reason collapses the refresh failure into a coarse, client-safe reason.
func (e *FallbackError) Reason() string {
	if kind, ok := VerificationKind(e.RefreshErr); ok && kind == KindExpired {
		return ReasonTokenExpired
	}
	return ReasonTokenInvalid
}

// Verifier checks a raw token and returns its claims. *TokenCodec satisfies it.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// GateOptions carries the optional collaborators of the AuthorizationGate.
type GateOptions struct {
	RotateOnRefresh bool
	Events          events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
}

// AuthorizationGate admits requests carrying a valid access token, or failing that a
// valid refresh token, and rejects everything else outside the allow-list.
type AuthorizationGate struct {
	tokens  Verifier
	issuer  *TokenIssuer
	allow   *AllowList
	rotate  bool
	events  events.Dispatcher
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthorizationGate constructs the gate.
func NewAuthorizationGate(tokens Verifier, issuer *TokenIssuer, allow *AllowList, opts GateOptions) *AuthorizationGate {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthorizationGate{
		tokens:  tokens,
		issuer:  issuer,
		allow:   allow,
		rotate:  opts.RotateOnRefresh,
		events:  opts.Events,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// Handle enforces authorization for every path outside the allow-list.
func (g *AuthorizationGate) Handle(c *fiber.Ctx) error {
	if g.allow.Allows(c.Path()) {
		g.metrics.RecordDecision(observability.DecisionPublic)
		return c.Next()
	}

	claims, source, err := g.Resolve(c)
	if err != nil {
		return g.reject(c, err)
	}

	identity := newRequestIdentity(claims, source)
	if source == SourceRefresh {
		g.metrics.RecordDecision(observability.DecisionRefresh)
		if g.rotate {
			if _, err := g.Rotate(c, identity); err != nil {
				return apperrors.NewInternalError(err)
			}
		}
	} else {
		g.metrics.RecordDecision(observability.DecisionAccess)
	}

	bindIdentity(c, identity)
	return c.Next()
}

// Resolve verifies the access token and falls back to the refresh token once.
// A missing access token is treated exactly like an invalid one.
func (g *AuthorizationGate) Resolve(c *fiber.Ctx) (*Claims, TokenSource, error) {
	claims, accessErr := g.tokens.Verify(readToken(c, AccessTokenHeader))
	if accessErr == nil {
		return claims, SourceAccess, nil
	}

	claims, refreshErr := g.tokens.Verify(readToken(c, RefreshTokenHeader))
	if refreshErr == nil {
		g.logger.Debug("access token rejected, admitted by refresh token",
			zap.String("path", c.Path()),
			zap.String("subject", claims.Subject),
			zap.Error(accessErr))
		return claims, SourceRefresh, nil
	}

	return nil, "", &FallbackError{AccessErr: accessErr, RefreshErr: refreshErr}
}

// Rotate mints a new pair for identity and sets it on the response.
func (g *AuthorizationGate) Rotate(c *fiber.Ctx, identity *RequestIdentity) (domain.TokenPair, error) {
	issuingContext := IssuingContext(c)
	pair, err := g.issuer.Issue(identityOf(identity), issuingContext)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("rotate tokens: %w", err)
	}
	WriteTokenPair(c, pair)

	g.logger.Info("tokens rotated", zap.String("subject", identity.Subject))
	g.publish(c.UserContext(), events.Event{
		Type:    events.EventTokensRotated,
		Subject: identity.Subject,
		Path:    c.Path(),
		Payload: events.TokensRotatedPayload{
			IssuingContext:   issuingContext,
			RefreshExpiresAt: pair.RefreshExpiresAt,
		},
	})
	return pair, nil
}

func (g *AuthorizationGate) reject(c *fiber.Ctx, err error) error {
	reason := ReasonTokenInvalid
	payload := events.AccessDeniedPayload{}

	var fallbackErr *FallbackError
	if errors.As(err, &fallbackErr) {
		reason = fallbackErr.Reason()
		payload.AccessFailure = kindOf(fallbackErr.AccessErr)
		payload.RefreshFailure = kindOf(fallbackErr.RefreshErr)
	}

	g.metrics.RecordDecision(observability.DecisionRejected)
	g.logger.Warn("request rejected",
		zap.String("path", c.Path()),
		zap.String("access_failure", payload.AccessFailure),
		zap.String("refresh_failure", payload.RefreshFailure))
	g.publish(c.UserContext(), events.Event{
		Type:    events.EventAccessDenied,
		Path:    c.Path(),
		Payload: payload,
	})

	return apperrors.NewDomainError("FORBIDDEN", "access denied", http.StatusForbidden, map[string]any{
		"reason": reason,
	})
}

func (g *AuthorizationGate) publish(ctx context.Context, event events.Event) {
	if g.events == nil {
		return
	}
	if err := g.events.Publish(ctx, event); err != nil {
		g.logger.Warn("publish event failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

// IssuingContext is the URL recorded as the issuer of tokens minted for this request.
func IssuingContext(c *fiber.Ctx) string {
	return c.BaseURL() + c.Path()
}

func kindOf(err error) string {
	if kind, ok := VerificationKind(err); ok {
		return string(kind)
	}
	return ""
}
