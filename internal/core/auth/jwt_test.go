package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTer(ttl time.Duration) *JWTer {
	return &JWTer{Secret: []byte("super-secret"), Issuer: "classifieds-test", TTL: ttl}
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()
	j := newJWTer(7 * 24 * time.Hour)

	tok, err := j.Issue("u1", "a@b.co", "user")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID)
	assert.Equal(t, "a@b.co", c.Email)
	assert.Equal(t, "user", c.Role)
	assert.NotEmpty(t, c.ID)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), c.Remaining().Seconds(), 5)
}

func TestTokenIDsAreUnique(t *testing.T) {
	t.Parallel()
	j := newJWTer(time.Hour)
	a, _ := j.Issue("u1", "a@b.co", "user")
	b, _ := j.Issue("u1", "a@b.co", "user")
	ca, _ := j.Parse(a)
	cb, _ := j.Parse(b)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestParseExpired(t *testing.T) {
	t.Parallel()
	j := newJWTer(-2 * time.Minute) // 超过 60s leeway
	tok, err := j.Issue("u1", "a@b.co", "user")
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseWrongSecretAndIssuer(t *testing.T) {
	t.Parallel()
	tok, err := newJWTer(time.Hour).Issue("u1", "a@b.co", "user")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("other"), Issuer: "classifieds-test", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIss := &JWTer{Secret: []byte("super-secret"), Issuer: "someone-else", TTL: time.Hour}
	_, err = wrongIss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlg(t *testing.T) {
	t.Parallel()
	claims := Claims{UID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "classifieds-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newJWTer(time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()
	_, err := newJWTer(time.Hour).Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
