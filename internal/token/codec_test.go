package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_IssueAndVerify(t *testing.T) {
	c := NewCodec("secret-key", time.Hour)

	raw, exp, err := c.Issue("user-123", "ana@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := c.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.WithinDuration(t, exp, claims.Expiry, time.Second)
}

func TestCodec_Expired(t *testing.T) {
	c := NewCodec("secret-key", -time.Minute)

	raw, _, err := c.Issue("user-123", "")
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_WrongSecret(t *testing.T) {
	a := NewCodec("secret-a", time.Hour)
	b := NewCodec("secret-b", time.Hour)

	raw, _, err := a.Issue("user-123", "")
	require.NoError(t, err)

	_, err = b.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodec_Garbage(t *testing.T) {
	c := NewCodec("secret-key", time.Hour)

	_, err := c.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = c.Verify("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodec_DecodeIgnoresExpiry(t *testing.T) {
	c := NewCodec("secret-key", -time.Minute)

	raw, _, err := c.Issue("user-123", "ana@example.com")
	require.NoError(t, err)

	// Verify lo rechaza, Decode lo lee igual.
	_, err = c.Verify(raw)
	require.Error(t, err)

	claims, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}
