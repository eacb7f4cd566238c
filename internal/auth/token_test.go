package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokens(t *testing.T) (*TokenService, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	svc, err := NewTokenService([]byte("test-signing-secret"), 30*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	return svc, clock
}

var aliceClaims = Claims{Subject: "alice@example.com", UserID: 5, Username: "alice", RoleID: model.RoleIDLandlord}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(nil, time.Minute)
	assert.Error(t, err)

	svc, err := NewTokenService([]byte("s"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, svc.TTL())
}

func TestTokenService_IssueVerify(t *testing.T) {
	svc, _ := newTestTokens(t)

	token, err := svc.Issue(aliceClaims, 10*time.Minute)
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, aliceClaims, *got)
}

func TestTokenService_Expiry(t *testing.T) {
	svc, clock := newTestTokens(t)

	token, err := svc.Issue(aliceClaims, 10*time.Minute)
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	clock.Advance(time.Minute + time.Second)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestTokenService_DefaultTTL(t *testing.T) {
	svc, clock := newTestTokens(t)

	token, err := svc.Issue(aliceClaims, 0)
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestTokenService_TamperedByteRejected(t *testing.T) {
	svc, _ := newTestTokens(t)

	token, err := svc.Issue(aliceClaims, 10*time.Minute)
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := svc.Verify(tampered)
		assert.ErrorIs(t, err, model.ErrUnauthenticated, "byte %d", i)
	}
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	svc, clock := newTestTokens(t)

	other, err := NewTokenService([]byte("another-secret"), time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	foreign, err := other.Issue(aliceClaims, time.Hour)
	require.NoError(t, err)

	_, err = svc.Verify(foreign)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	for _, bad := range []string{"", "abc", "a.b.c", strings.Repeat("x", 200)} {
		_, err := svc.Verify(bad)
		assert.ErrorIs(t, err, model.ErrUnauthenticated)
	}
}

func TestTokenService_RejectsWrongTypeAndAlgorithm(t *testing.T) {
	svc, clock := newTestTokens(t)
	exp := jwt.NewNumericDate(clock.Now().Add(time.Hour))

	wrongType := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID: 5, Type: "refresh_token",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice@example.com", ExpiresAt: exp},
	})
	signed, err := wrongType.SignedString([]byte("test-signing-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID: 5, Type: TokenType,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice@example.com"},
	})
	signed, err = noExpiry.SignedString([]byte("test-signing-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, accessClaims{
		UserID: 5, Type: TokenType,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice@example.com", ExpiresAt: exp},
	})
	signed, err = hs512.SignedString([]byte("test-signing-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, accessClaims{
		UserID: 5, Type: TokenType,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice@example.com", ExpiresAt: exp},
	})
	signed, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}
