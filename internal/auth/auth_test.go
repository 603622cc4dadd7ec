package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("   ")
	assert.Error(t, err)

	svc, err := New("test-secret")
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc, err := New("test-secret")
	require.NoError(t, err)

	hashed, err := svc.HashPassword("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", hashed)

	assert.True(t, svc.VerifyPassword("pw", hashed))
	assert.False(t, svc.VerifyPassword("wrong", hashed))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	svc, err := New("test-secret")
	require.NoError(t, err)

	assert.False(t, svc.VerifyPassword("pw", ""))
	assert.False(t, svc.VerifyPassword("pw", "not-a-bcrypt-hash"))
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := New("test-secret")
	require.NoError(t, err)

	token, err := svc.IssueToken("driver_abc", time.Minute)
	require.NoError(t, err)

	subject, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "driver_abc", subject)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc, err := New("test-secret")
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   "driver_abc",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer, err := New("other-secret")
	require.NoError(t, err)
	token, err := issuer.IssueToken("driver_abc", time.Minute)
	require.NoError(t, err)

	svc, err := New("test-secret")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongMethod(t *testing.T) {
	svc, err := New("test-secret")
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   "driver_abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, err := New("test-secret")
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestValidateTokenRejectsMissingSubject(t *testing.T) {
	svc, err := New("test-secret")
	require.NoError(t, err)

	token, err := svc.IssueToken("", time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
