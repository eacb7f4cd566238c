package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

// Principal is the caller identity resolved for one request.
type Principal struct {
	UserID   int64          `json:"user_id"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	RoleID   int64          `json:"role_id"`
	RoleName string         `json:"role_name"`
	Role     model.RoleKind `json:"-"`
}

// UserLookup loads a user with its role joined.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// Guard resolves bearer tokens into principals.
type Guard struct {
	tokens *TokenService
	users  UserLookup
}

// NewGuard creates a Guard.
func NewGuard(tokens *TokenService, users UserLookup) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// ResolvePrincipal verifies token and loads the user it names. A user that
// no longer exists makes the token stale.
func (g *Guard) ResolvePrincipal(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, model.ErrUnauthenticated
	}
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, model.ErrUnauthenticated
	}

	user, err := g.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load principal: %w", err)
	}

	return PrincipalFor(user), nil
}

// PrincipalFor builds the principal of a loaded user.
func PrincipalFor(user *model.User) *Principal {
	p := &Principal{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RoleID:   user.RoleID,
	}
	if user.Role != nil {
		p.RoleName = user.Role.Name
		p.Role = user.Role.Kind()
	}
	return p
}

// RequireRole fails with model.ErrForbidden unless p holds role.
func RequireRole(p *Principal, role model.RoleKind) error {
	if p == nil {
		return model.ErrUnauthenticated
	}
	if p.Role != role {
		return fmt.Errorf("%w: requires role %s", model.ErrForbidden, role)
	}
	return nil
}

// RequireOwnerOrAdmin fails with model.ErrForbidden unless p is an admin or
// owns the resource.
func RequireOwnerOrAdmin(p *Principal, ownerID int64) error {
	if p == nil {
		return model.ErrUnauthenticated
	}
	if p.Role == model.RoleAdmin || p.UserID == ownerID {
		return nil
	}
	return fmt.Errorf("%w: not allowed to modify this resource", model.ErrForbidden)
}
