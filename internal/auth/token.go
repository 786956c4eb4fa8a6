package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// VerificationErrorKind classifies why a token was rejected.
type VerificationErrorKind string

const (
	KindMalformed        VerificationErrorKind = "malformed"
	KindInvalidSignature VerificationErrorKind = "invalid_signature"
	KindExpired          VerificationErrorKind = "expired"
)

// VerificationError is returned by TokenCodec.Verify for every rejected token.
type VerificationError struct {
	Kind VerificationErrorKind
	Err  error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + string(e.Kind)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// VerificationKind extracts the kind from err, if it is a VerificationError.
func VerificationKind(err error) (VerificationErrorKind, bool) {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return "", false
}

// Claims describes the JWT payload. The issuing context travels as "iss".
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// NewClaims builds claims for a subject expiring at expiresAt.
func NewClaims(subject string, roles []string, issuingContext string, expiresAt time.Time) *Claims {
	r := make([]string, len(roles))
	copy(r, roles)
	return &Claims{
		Roles: r,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuingContext,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

// IssuingContext returns the URL the token was minted for.
func (c *Claims) IssuingContext() string {
	return c.Issuer
}

// Expiry returns the absolute expiry of the token.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenCodec signs and verifies HS256 tokens with a shared secret.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec builds a codec. A nil clock defaults to time.Now.
func NewTokenCodec(secret string, now func() time.Time) *TokenCodec {
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{secret: []byte(secret), now: now}
}

// Sign encodes and signs the claims.
func (tc *TokenCodec) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tc.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Verify checks the signature and then the expiry, in that order.
func (tc *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, &VerificationError{Kind: KindMalformed, Err: errors.New("empty token")}
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil {
		return nil, classifyError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, &VerificationError{Kind: KindMalformed, Err: errors.New("invalid token claims")}
	}
	if claims.Subject == "" {
		return nil, &VerificationError{Kind: KindMalformed, Err: errors.New("missing subject")}
	}
	return claims, nil
}

func classifyError(err error) *VerificationError {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return &VerificationError{Kind: KindInvalidSignature, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &VerificationError{Kind: KindExpired, Err: err}
	default:
		return &VerificationError{Kind: KindMalformed, Err: err}
	}
}
