package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/monitoring"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

// TenantInput carries a new tenant profile.
type TenantInput struct {
	UserID  int64  `json:"user_id"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// TenantUpdate changes the set fields of a tenant profile.
type TenantUpdate struct {
	UserID  *int64  `json:"user_id"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type TenantService struct {
	store store.Store
}

func NewTenantService(st store.Store) *TenantService {
	return &TenantService{store: st}
}

// checkTenant enforces the profile rules against other tenants: the user
// exists, the phone is present and unique, one profile per user.
func checkTenant(ctx context.Context, q store.Queries, t *model.Tenant) error {
	if _, err := q.GetUser(ctx, t.UserID); err != nil {
		return err
	}
	if t.Phone == "" {
		return invalid("phone number is required")
	}
	if other, err := q.GetTenantByPhone(ctx, t.Phone); err == nil && other.ID != t.ID {
		return conflictf("phone number already exists")
	} else if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	if other, err := q.GetTenantByUserID(ctx, t.UserID); err == nil && other.ID != t.ID {
		return conflictf("user %d already has a tenant profile", t.UserID)
	} else if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	return nil
}

// Create adds a tenant profile for a user. Users create their own profile;
// admins create any.
func (s *TenantService) Create(ctx context.Context, p *auth.Principal, in TenantInput) (*model.Tenant, error) {
	if err := auth.RequireOwnerOrAdmin(p, in.UserID); err != nil {
		return nil, err
	}
	tenant := &model.Tenant{
		UserID:  in.UserID,
		Phone:   strings.TrimSpace(in.Phone),
		Address: in.Address,
	}
	err := s.store.InTx(ctx, func(q store.Queries) error {
		if err := checkTenant(ctx, q, tenant); err != nil {
			return err
		}
		return q.CreateTenant(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int64("tenant_id", tenant.ID).Int64("user_id", tenant.UserID).Msg("Tenant created")
	return tenant, nil
}

func (s *TenantService) Get(ctx context.Context, id int64) (*model.Tenant, error) {
	return s.store.GetTenant(ctx, id)
}

func (s *TenantService) List(ctx context.Context, page store.Page) ([]model.Tenant, error) {
	return s.store.ListTenants(ctx, page)
}

// Update edits a tenant profile. Moving it to another user needs the caller
// to be allowed on both users.
func (s *TenantService) Update(ctx context.Context, p *auth.Principal, id int64, upd TenantUpdate) (*model.Tenant, error) {
	var tenant *model.Tenant
	err := s.store.InTx(ctx, func(q store.Queries) error {
		var err error
		if tenant, err = q.GetTenant(ctx, id); err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, tenant.UserID); err != nil {
			return err
		}
		if upd.UserID != nil {
			if err := auth.RequireOwnerOrAdmin(p, *upd.UserID); err != nil {
				return err
			}
			tenant.UserID = *upd.UserID
		}
		if upd.Phone != nil {
			tenant.Phone = strings.TrimSpace(*upd.Phone)
		}
		if upd.Address != nil {
			tenant.Address = *upd.Address
		}
		if err := checkTenant(ctx, q, tenant); err != nil {
			return err
		}
		return q.UpdateTenant(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int64("tenant_id", id).Msg("Tenant updated")
	return tenant, nil
}

// Delete removes a tenant with its rentals, their payments and its
// maintenance requests. Apartments held by an active rental are released.
func (s *TenantService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	var released int
	err := s.store.InTx(ctx, func(q store.Queries) error {
		tenant, err := q.GetTenant(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.RequireOwnerOrAdmin(p, tenant.UserID); err != nil {
			return err
		}
		rentals, err := q.ListRentalsByTenant(ctx, id)
		if err != nil {
			return err
		}
		released = 0
		for i := range rentals {
			ok, err := removeRental(ctx, q, &rentals[i], true)
			if err != nil {
				return err
			}
			if ok {
				released++
			}
		}
		if _, err := q.DeleteMaintenanceByTenant(ctx, id); err != nil {
			return err
		}
		return q.DeleteTenant(ctx, id)
	})
	if err != nil {
		return err
	}

	if released > 0 {
		monitoring.ApartmentReleases.WithLabelValues(releaseTenantDeleted).Add(float64(released))
	}
	log.Ctx(ctx).Info().Int64("tenant_id", id).Int("released", released).Msg("Tenant deleted")
	return nil
}
