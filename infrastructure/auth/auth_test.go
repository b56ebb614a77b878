package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/account"
)

func testUser() account.User {
	return account.ReconstructUser(7, "owner@example.com", "hash", account.RoleOwner, time.Now(), time.Now())
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := NewJWTIssuer("a-secret-that-is-long-enough-1234", time.Hour)

	token, expires, err := issuer.Issue(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, account.RoleOwner, claims.Role)
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := NewJWTIssuer("a-secret-that-is-long-enough-1234", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTIssuer_RejectsOtherSecret(t *testing.T) {
	token, _, err := NewJWTIssuer("first-secret-that-is-long-enough-1", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewJWTIssuer("second-secret-that-is-long-enough-2", time.Hour).Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTIssuer_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTIssuer("secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTIssuer_Garbage(t *testing.T) {
	_, err := NewJWTIssuer("secret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasherWithCost(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.ErrorIs(t, h.Compare(hash, "wrong horse"), domain.ErrUnauthorized)
	assert.ErrorIs(t, h.Compare("not-a-hash", "x"), domain.ErrUnauthorized)
}
