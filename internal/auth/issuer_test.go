package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/notification-service/internal/domain"
)

func TestTokenIssuer_Issue(t *testing.T) {
	clock := newFakeClock()
	codec := NewTokenCodec(testSecret, clock.Now)
	issuer := NewTokenIssuer(codec, 5*time.Minute, 6*time.Hour)

	pair, err := issuer.Issue(domain.Identity{Subject: "alice", Roles: []string{"USER"}}, "http://example.com/login")
	require.NoError(t, err)

	assert.True(t, pair.AccessExpiresAt.Equal(baseTime.Add(5*time.Minute)))
	assert.True(t, pair.RefreshExpiresAt.Equal(baseTime.Add(6*time.Hour)))
	assert.NotEqual(t, pair.Access, pair.Refresh)

	access, err := codec.Verify(pair.Access)
	require.NoError(t, err)
	refresh, err := codec.Verify(pair.Refresh)
	require.NoError(t, err)

	assert.Equal(t, access.Subject, refresh.Subject)
	assert.Equal(t, access.Roles, refresh.Roles)
	assert.Equal(t, access.IssuingContext(), refresh.IssuingContext())
	assert.True(t, access.Expiry().Before(refresh.Expiry()))
}

func TestTokenIssuer_EmptySubject(t *testing.T) {
	issuer := NewTokenIssuer(NewTokenCodec(testSecret, nil), time.Minute, time.Hour)

	_, err := issuer.Issue(domain.Identity{Roles: []string{"USER"}}, "ctx")
	assert.ErrorIs(t, err, ErrEmptySubject)
}

func TestTokenIssuer_DefaultTTLs(t *testing.T) {
	issuer := NewTokenIssuer(NewTokenCodec(testSecret, nil), 0, 0)
	assert.Equal(t, time.Hour, issuer.AccessTTL())
	assert.Equal(t, 6*time.Hour, issuer.refreshTTL)
}

func TestTokenIssuer_AccessExpiresBeforeRefresh(t *testing.T) {
	clock := newFakeClock()
	codec := NewTokenCodec(testSecret, clock.Now)
	issuer := NewTokenIssuer(codec, 5*time.Minute, 6*time.Hour)

	pair, err := issuer.Issue(domain.Identity{Subject: "alice", Roles: []string{"USER"}}, "ctx")
	require.NoError(t, err)

	claims, err := codec.Verify(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{"USER"}, claims.Roles)

	clock.Advance(5*time.Minute + time.Second)

	_, err = codec.Verify(pair.Access)
	kind, _ := VerificationKind(err)
	assert.Equal(t, KindExpired, kind)

	claims, err = codec.Verify(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{"USER"}, claims.Roles)
}
