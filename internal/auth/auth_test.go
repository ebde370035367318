package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallerContext(t *testing.T) {
	_, err := CallerFrom(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ctx := WithCaller(context.Background(), Caller{UserID: 3, IsStaff: true})
	c, err := CallerFrom(ctx)
	require.NoError(t, err)
	assert.Equal(t, Caller{UserID: 3, IsStaff: true}, c)
}

func TestIssuer_RoundTrip(t *testing.T) {
	i := NewIssuer("secret", time.Hour)

	token, err := i.Issue(42, true)
	require.NoError(t, err)

	c, err := i.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Caller{UserID: 42, IsStaff: true}, c)
}

func TestIssuer_RejectsForeignSignature(t *testing.T) {
	token, err := NewIssuer("other", time.Hour).Issue(42, true)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestIssuer_RejectsExpiredToken(t *testing.T) {
	i := NewIssuer("secret", time.Minute)
	i.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := i.Issue(1, false)
	require.NoError(t, err)

	i.now = time.Now
	_, err = i.Parse(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestIssuer_RejectsGarbage(t *testing.T) {
	_, err := NewIssuer("secret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrBadCredentials)
}

func TestHashPassword_LimitsBytesNotRunes(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 72))
	assert.NoError(t, err)

	// 72 runes but 144 bytes
	_, err = HashPassword(strings.Repeat("é", 72))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
