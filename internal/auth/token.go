package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

// TokenType marks access tokens so other HS256 tokens signed with the same
// secret are not accepted.
const TokenType = "access_token"

// DefaultTokenTTL is used when no lifetime is configured.
const DefaultTokenTTL = 30 * time.Minute

// Claims are the identity fields embedded in an access token.
type Claims struct {
	Subject  string // user email
	UserID   int64
	Username string
	RoleID   int64
}

type accessClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	RoleID   int64  `json:"role_id"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService. The secret is copied and never
// exposed again.
func NewTokenService(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is not set")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the default token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs claims into a token valid for ttl, or the default lifetime
// when ttl is not positive.
func (s *TokenService) Issue(c Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	claims := accessClaims{
		UserID:   c.UserID,
		Username: c.Username,
		RoleID:   c.RoleID,
		Type:     TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
func (s *TokenService) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		log.Debug().Err(err).Msg("Rejected access token")
		return nil, model.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || claims.Type != TokenType || claims.UserID <= 0 || claims.Subject == "" {
		log.Debug().Msg("Rejected access token with incomplete claims")
		return nil, model.ErrUnauthenticated
	}

	return &Claims{
		Subject:  claims.Subject,
		UserID:   claims.UserID,
		Username: claims.Username,
		RoleID:   claims.RoleID,
	}, nil
}
