package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/notification-service/internal/domain"
	"github.com/spec-kit/notification-service/internal/events"
)

type stubVerifier struct {
	mu    sync.Mutex
	users map[string]string
	roles map[string][]string
	err   error
	calls int
}

func (s *stubVerifier) VerifyCredentials(_ context.Context, username, password string) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return domain.Identity{}, s.err
	}
	stored, ok := s.users[username]
	if !ok || stored != password {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	return domain.Identity{Subject: username, Roles: s.roles[username]}, nil
}

type stubLimiter struct {
	mu       sync.Mutex
	blocked  bool
	err      error
	failures map[string]int
	resets   int
}

func (l *stubLimiter) Blocked(context.Context, string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.blocked, l.err
}

func (l *stubLimiter) RecordFailure(_ context.Context, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures == nil {
		l.failures = map[string]int{}
	}
	l.failures[username]++
	return l.err
}

func (l *stubLimiter) Reset(context.Context, string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resets++
	return l.err
}

type loginFixture struct {
	codec      *TokenCodec
	verifier   *stubVerifier
	limiter    *stubLimiter
	dispatcher *recordingDispatcher
	gate       *AuthenticationGate
}

func newLoginFixture() *loginFixture {
	clock := newFakeClock()
	verifier := &stubVerifier{
		users: map[string]string{"alice": "s3cret"},
		roles: map[string][]string{"alice": {"USER"}},
	}
	f := &loginFixture{
		codec:      NewTokenCodec(testSecret, clock.Now),
		verifier:   verifier,
		limiter:    &stubLimiter{},
		dispatcher: &recordingDispatcher{},
	}
	issuer := NewTokenIssuer(f.codec, 5*time.Minute, 6*time.Hour)
	f.gate = NewAuthenticationGate(f.verifier, issuer, LoginOptions{
		Limiter: f.limiter,
		Events:  f.dispatcher,
	})
	return f
}

func (f *loginFixture) postJSON(t *testing.T, body string) *http.Response {
	t.Helper()
	app := newTestApp()
	app.Post("/login", f.gate.Handle)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return doRequest(t, app, req)
}

func TestAuthenticationGate_Success(t *testing.T) {
	f := newLoginFixture()

	resp := f.postJSON(t, `{"username":"alice","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	access, ok := StripBearer(resp.Header.Get(AccessTokenHeader))
	require.True(t, ok)
	refresh, ok := StripBearer(resp.Header.Get(RefreshTokenHeader))
	require.True(t, ok)

	accessClaims, err := f.codec.Verify(access)
	require.NoError(t, err)
	refreshClaims, err := f.codec.Verify(refresh)
	require.NoError(t, err)

	assert.Equal(t, "alice", accessClaims.Subject)
	assert.Equal(t, []string{"USER"}, accessClaims.Roles)
	assert.Equal(t, "http://example.com/login", accessClaims.IssuingContext())
	assert.True(t, accessClaims.Expiry().Equal(baseTime.Add(5*time.Minute)))
	assert.True(t, refreshClaims.Expiry().Equal(baseTime.Add(6*time.Hour)))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body struct {
		Data struct {
			Subject string   `json:"subject"`
			Roles   []string `json:"roles"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "alice", body.Data.Subject)
	assert.Equal(t, []string{"USER"}, body.Data.Roles)

	assert.Equal(t, 1, f.limiter.resets)
	assert.Equal(t, []events.EventType{events.EventLoginSucceeded}, f.dispatcher.types())
}

func TestAuthenticationGate_FormBody(t *testing.T) {
	f := newLoginFixture()
	app := newTestApp()
	app.Post("/login", f.gate.Handle)

	form := url.Values{"username": {"alice"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp := doRequest(t, app, req)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(AccessTokenHeader))
}

func TestAuthenticationGate_GenericRejection(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown user", `{"username":"mallory","password":"s3cret"}`},
		{"wrong password", `{"username":"alice","password":"nope"}`},
		{"empty password", `{"username":"alice","password":""}`},
		{"empty username", `{"username":"","password":"s3cret"}`},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoginFixture()
			resp := f.postJSON(t, tt.body)

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Empty(t, resp.Header.Get(AccessTokenHeader))
			assert.Empty(t, resp.Header.Get(RefreshTokenHeader))
			body := decodeError(t, resp)
			messages = append(messages, body.Error.Message)
			assert.Equal(t, []events.EventType{events.EventLoginFailed}, f.dispatcher.types())
		})
	}

	for _, msg := range messages {
		assert.Equal(t, LoginRejectedMessage, msg)
	}
}

func TestAuthenticationGate_RecordsFailures(t *testing.T) {
	f := newLoginFixture()

	f.postJSON(t, `{"username":"alice","password":"nope"}`)
	f.postJSON(t, `{"username":"alice","password":"nope"}`)

	assert.Equal(t, 2, f.limiter.failures["alice"])
	assert.Zero(t, f.limiter.resets)
}

func TestAuthenticationGate_InvalidPayload(t *testing.T) {
	f := newLoginFixture()

	resp := f.postJSON(t, `{"username":`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, resp).Error.Code)
	assert.Zero(t, f.verifier.calls)
}

func TestAuthenticationGate_Locked(t *testing.T) {
	f := newLoginFixture()
	f.limiter.blocked = true

	resp := f.postJSON(t, `{"username":"alice","password":"s3cret"}`)

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", decodeError(t, resp).Error.Code)
	assert.Zero(t, f.verifier.calls)
	assert.Empty(t, resp.Header.Get(AccessTokenHeader))
	assert.Equal(t, []events.EventType{events.EventLoginLocked}, f.dispatcher.types())
}

func TestAuthenticationGate_LimiterFailsOpen(t *testing.T) {
	f := newLoginFixture()
	f.limiter.err = errors.New("redis down")

	resp := f.postJSON(t, `{"username":"alice","password":"s3cret"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(AccessTokenHeader))
}

func TestAuthenticationGate_VerifierFailure(t *testing.T) {
	f := newLoginFixture()
	f.verifier.err = errors.New("connection refused")

	resp := f.postJSON(t, `{"username":"alice","password":"s3cret"}`)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(AccessTokenHeader))
	assert.Nil(t, f.limiter.failures)
}

func TestAuthenticationGate_WithoutLimiter(t *testing.T) {
	f := newLoginFixture()
	gate := NewAuthenticationGate(f.verifier, NewTokenIssuer(f.codec, time.Minute, time.Hour), LoginOptions{})
	app := newTestApp()
	app.Post("/login", gate.Handle)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := doRequest(t, app, req)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPassword_HashAndCompare(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "nope"))
	assert.NotPanics(t, func() { CompareDummy("anything", 4) })
}

func TestNewDummyHash_FallsBackOnUnusableCost(t *testing.T) {
	hash := newDummyHash(bcrypt.MaxCost + 9)
	require.NotEmpty(t, hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.Error(t, ComparePassword(hash, "anything"))

	hash = newDummyHash(bcrypt.MinCost)
	cost, err = bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
