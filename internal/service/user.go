package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/crypto"
	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

// UserUpdate changes the set fields of a user.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	RoleID   *int64  `json:"role_id"`
}

type UserService struct {
	store  store.Store
	hasher *crypto.PasswordHasher
}

func NewUserService(st store.Store, hasher *crypto.PasswordHasher) *UserService {
	return &UserService{store: st, hasher: hasher}
}

// Create registers a user on behalf of an admin.
func (s *UserService) Create(ctx context.Context, p *auth.Principal, in SignupInput) (*model.User, error) {
	if err := auth.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	return createUser(ctx, s.store, s.hasher, in)
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) List(ctx context.Context, page store.Page) ([]model.User, error) {
	return s.store.ListUsers(ctx, page)
}

// Update lets users edit themselves and admins edit anyone. Only admins
// may change a role.
func (s *UserService) Update(ctx context.Context, p *auth.Principal, id int64, upd UserUpdate) (*model.User, error) {
	if err := auth.RequireOwnerOrAdmin(p, id); err != nil {
		return nil, err
	}
	if upd.RoleID != nil {
		if err := auth.RequireRole(p, model.RoleAdmin); err != nil {
			return nil, err
		}
	}

	var digest string
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		var err error
		if digest, err = s.hasher.Hash(*upd.Password); err != nil {
			return nil, err
		}
	}

	err := s.store.InTx(ctx, func(q store.Queries) error {
		user, err := q.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if upd.Username != nil {
			name := strings.TrimSpace(*upd.Username)
			if err := validateUsername(name); err != nil {
				return err
			}
			user.Username = name
		}
		if upd.Email != nil {
			email, err := normalizeEmail(*upd.Email)
			if err != nil {
				return err
			}
			user.Email = email
		}
		if upd.RoleID != nil {
			if _, err := q.GetRole(ctx, *upd.RoleID); errors.Is(err, model.ErrNotFound) {
				return roleMissing(ctx, q, *upd.RoleID)
			} else if err != nil {
				return err
			}
			user.RoleID = *upd.RoleID
		}
		if digest != "" {
			user.HashedPassword = digest
		}

		if _, err := q.FindUserConflict(ctx, user.Username, user.Email, id); err == nil {
			return conflictf("username or email already registered")
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		return q.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Int64("user_id", id).Msg("User updated")
	return s.store.GetUser(ctx, id)
}

// Delete removes a user that owns no apartments and has no tenant profile.
func (s *UserService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	if err := auth.RequireOwnerOrAdmin(p, id); err != nil {
		return err
	}
	err := s.store.InTx(ctx, func(q store.Queries) error {
		if _, err := q.GetUser(ctx, id); err != nil {
			return err
		}
		n, err := q.CountApartmentsByLandlord(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("user still owns %d apartments", n)
		}
		if _, err := q.GetTenantByUserID(ctx, id); err == nil {
			return conflictf("user still has a tenant profile")
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		return q.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Int64("user_id", id).Msg("User deleted")
	return nil
}

type RoleService struct {
	store store.Store
}

func NewRoleService(st store.Store) *RoleService {
	return &RoleService{store: st}
}

func (s *RoleService) List(ctx context.Context) ([]model.Role, error) {
	return s.store.ListRoles(ctx)
}

func (s *RoleService) Create(ctx context.Context, p *auth.Principal, name string) (*model.Role, error) {
	if err := auth.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	role := &model.Role{Name: strings.TrimSpace(name)}
	if role.Name == "" {
		return nil, invalid("role name is required")
	}
	err := s.store.InTx(ctx, func(q store.Queries) error {
		if _, err := q.GetRoleByName(ctx, role.Name); err == nil {
			return conflictf("role %q already exists", role.Name)
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		return q.CreateRole(ctx, role)
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, p *auth.Principal, id int64, name string) (*model.Role, error) {
	if err := auth.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	role := &model.Role{ID: id, Name: strings.TrimSpace(name)}
	if role.Name == "" {
		return nil, invalid("role name is required")
	}
	err := s.store.InTx(ctx, func(q store.Queries) error {
		if _, err := q.GetRole(ctx, id); err != nil {
			return err
		}
		if other, err := q.GetRoleByName(ctx, role.Name); err == nil && other.ID != id {
			return conflictf("role %q already exists", role.Name)
		} else if err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}
		return q.UpdateRole(ctx, role)
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// Delete removes a role no user references.
func (s *RoleService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	if err := auth.RequireRole(p, model.RoleAdmin); err != nil {
		return err
	}
	return s.store.InTx(ctx, func(q store.Queries) error {
		if _, err := q.GetRole(ctx, id); err != nil {
			return err
		}
		n, err := q.CountUsersByRole(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("cannot delete role with associated users")
		}
		return q.DeleteRole(ctx, id)
	})
}
