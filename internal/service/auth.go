package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/crypto"
	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/monitoring"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

// LoginResult is returned on a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	RoleID      int64  `json:"role_id"`
}

// SignupInput carries a new account.
type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int64  `json:"role_id"`
}

// AuthService handles login and signup.
type AuthService struct {
	store    store.Store
	hasher   *crypto.PasswordHasher
	tokens   *auth.TokenService
	throttle *auth.LoginThrottle

	decoyOnce sync.Once
	decoy     string
}

// NewAuthService creates an AuthService. throttle may be nil.
func NewAuthService(st store.Store, hasher *crypto.PasswordHasher, tokens *auth.TokenService, throttle *auth.LoginThrottle) *AuthService {
	return &AuthService{store: st, hasher: hasher, tokens: tokens, throttle: throttle}
}

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", model.ErrUnauthenticated)

// decoyDigest is verified against when the user does not exist so that an
// unknown login costs as much as a wrong password.
func (s *AuthService) decoyDigest() string {
	s.decoyOnce.Do(func() {
		digest, err := s.hasher.Hash("decoy-password")
		if err != nil {
			log.Warn().Err(err).Msg("Failed to build decoy digest")
		}
		s.decoy = digest
	})
	return s.decoy
}

// Login checks identifier (username or email) and password and issues an
// access token. Every failure is the same model.ErrUnauthenticated.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	logger := log.Ctx(ctx)

	if s.throttle != nil && s.throttle.Locked(ctx, identifier) {
		monitoring.LoginAttempts.WithLabelValues(monitoring.LoginLocked).Inc()
		logger.Warn().Msg("Login refused for locked identifier")
		return nil, errInvalidCredentials
	}

	user, err := s.store.GetUserByLogin(ctx, strings.TrimSpace(identifier))
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.hasher.Verify(password, s.decoyDigest())
		s.fail(ctx, identifier)
		return nil, errInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		s.fail(ctx, identifier)
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Claims{
		Subject:  user.Email,
		UserID:   user.ID,
		Username: user.Username,
		RoleID:   user.RoleID,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if s.throttle != nil {
		s.throttle.Reset(ctx, identifier)
	}

	monitoring.LoginAttempts.WithLabelValues(monitoring.LoginSuccess).Inc()
	logger.Info().Int64("user_id", user.ID).Msg("User logged in")
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		Username:    user.Username,
		RoleID:      user.RoleID,
	}, nil
}

func (s *AuthService) fail(ctx context.Context, identifier string) {
	monitoring.LoginAttempts.WithLabelValues(monitoring.LoginFailure).Inc()
	log.Ctx(ctx).Info().Msg("Login failed")
	if s.throttle != nil && s.throttle.RecordFailure(ctx, identifier) {
		monitoring.AlertLockout(identifier)
	}
}

// Signup registers a new user.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	return createUser(ctx, s.store, s.hasher, in)
}

func validateUsername(name string) error {
	if n := len([]rune(name)); n < 3 || n > 50 {
		return invalid("username must be between 3 and 50 characters")
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", invalid("email %q is not a valid address", email)
	}
	return strings.ToLower(addr.Address), nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return invalid("password must be at least 8 characters")
	}
	if len(password) > crypto.MaxPasswordBytes {
		return invalid("password must be at most %d bytes", crypto.MaxPasswordBytes)
	}
	return nil
}

// roleMissing reports an unknown role id with the roles that do exist.
func roleMissing(ctx context.Context, q store.Queries, roleID int64) error {
	roles, err := q.ListRoles(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, fmt.Sprintf("%d:%s", r.ID, r.Name))
	}
	return invalid("invalid role_id %d. Available: %s", roleID, strings.Join(names, ", "))
}

func createUser(ctx context.Context, st store.Store, hasher *crypto.PasswordHasher, in SignupInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	digest, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		HashedPassword: digest,
		RoleID:         in.RoleID,
	}
	err = st.InTx(ctx, func(q store.Queries) error {
		if _, err := q.GetRole(ctx, in.RoleID); errors.Is(err, model.ErrNotFound) {
			return roleMissing(ctx, q, in.RoleID)
		} else if err != nil {
			return err
		}
		if _, err := q.FindUserConflict(ctx, username, email, 0); err == nil {
			return conflictf("username or email already registered")
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		return q.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Int64("user_id", user.ID).Int64("role_id", user.RoleID).Msg("User created")
	return st.GetUser(ctx, user.ID)
}
