package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-server/internal/domain"
)

func newTestCodec(t *testing.T, secret string, now time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(secret, DefaultTokenTTL)
	require.NoError(t, err)
	codec.now = func() time.Time { return now }
	return codec
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, "super-secret", now)
	user := &domain.User{ID: "u-1", Username: "alice", Email: "a@example.com"}

	tok, expires, err := codec.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, now.Add(72*time.Hour), expires)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestVerify_ReplayWithinLifetime(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, "k", issued)
	tok, _, err := codec.Issue(&domain.User{ID: "u-1"})
	require.NoError(t, err)

	for _, offset := range []time.Duration{0, time.Hour, 24 * time.Hour, 71 * time.Hour} {
		codec.now = func() time.Time { return issued.Add(offset) }
		_, err := codec.Verify(tok)
		assert.NoError(t, err, "offset %s", offset)
	}
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, "k", issued)
	tok, _, err := codec.Issue(&domain.User{ID: "u-1"})
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(72*time.Hour + time.Minute) }
	_, err = codec.Verify(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Now()
	tok, _, err := newTestCodec(t, "right-secret", now).Issue(&domain.User{ID: "u-2"})
	require.NoError(t, err)

	_, err = newTestCodec(t, "wrong-secret", now).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := newTestCodec(t, "k", time.Now()).Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "u-3",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestCodec(t, "k", now).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u-4"}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = newTestCodec(t, "k", time.Now()).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenCodec_RequiresSecret(t *testing.T) {
	_, err := NewTokenCodec("  ", time.Hour)
	assert.Error(t, err)
}
