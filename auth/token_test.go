package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenCodec_DefaultTTL(t *testing.T) {
	c := NewTokenCodec([]byte("k"), 0)
	assert.Equal(t, DefaultTokenTTL, c.ttl)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	c := NewTokenCodec([]byte("test-secret"), time.Hour)

	token, err := c.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := c.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Data.UserName)

	expected := time.Now().Add(time.Hour)
	assert.WithinDuration(t, expected, claims.ExpiresAt.Time, time.Minute)
}

func TestIssue_ExpiresAfter24Hours(t *testing.T) {
	issued := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	c := NewTokenCodec([]byte("test-secret"), DefaultTokenTTL)
	c.now = func() time.Time { return issued }

	token, err := c.Issue("alice")
	require.NoError(t, err)

	claims, err := c.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestVerify_Expired(t *testing.T) {
	c := NewTokenCodec([]byte("test-secret"), DefaultTokenTTL)
	c.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }

	token, err := c.Issue("alice")
	require.NoError(t, err)

	c.now = time.Now
	_, err = c.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_InvalidSignature(t *testing.T) {
	c1 := NewTokenCodec([]byte("secret-key-1"), time.Hour)
	c2 := NewTokenCodec([]byte("secret-key-2"), time.Hour)

	token, err := c1.Issue("alice")
	require.NoError(t, err)

	_, err = c2.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	c := NewTokenCodec([]byte("test-secret"), time.Hour)

	_, err := c.Verify("not-a-valid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Empty(t *testing.T) {
	c := NewTokenCodec([]byte("test-secret"), time.Hour)

	_, err := c.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingExpiry(t *testing.T) {
	secret := []byte("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"data": map[string]string{"userName": "alice"},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenCodec(secret, time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_BareStringIdentityRejected(t *testing.T) {
	secret := []byte("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":  time.Now().Add(time.Hour).Unix(),
		"data": "alice",
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenCodec(secret, time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongAlgorithm(t *testing.T) {
	secret := []byte("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Data: Identity{UserName: "alice"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenCodec(secret, time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
