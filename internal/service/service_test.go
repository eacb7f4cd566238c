package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/crypto"
	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store/memory"
)

// fixture is a seeded store with an admin, a landlord owning one apartment
// and a renter with a tenant profile.
type fixture struct {
	ctx    context.Context
	store  *memory.Store
	svc    *Services
	tokens *auth.TokenService

	admin, landlord, renter *auth.Principal
	apartment               *model.Apartment
	tenant                  *model.Tenant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithThrottle(t, nil)
}

func newFixtureWithThrottle(t *testing.T, throttle *auth.LoginThrottle) *fixture {
	t.Helper()

	f := &fixture{ctx: context.Background(), store: memory.NewSeeded()}
	tokens, err := auth.NewTokenService([]byte("service-test-secret"), 30*time.Minute)
	require.NoError(t, err)
	f.tokens = tokens
	f.svc = New(f.store, crypto.NewPasswordHasher(bcrypt.MinCost), tokens, throttle)

	f.admin = f.signup(t, "root", model.RoleIDAdmin)
	f.landlord = f.signup(t, "lee", model.RoleIDLandlord)
	f.renter = f.signup(t, "ren", model.RoleIDTenant)

	f.apartment, err = f.svc.Apartments.Create(f.ctx, f.landlord, ApartmentInput{
		Name:      "Loft",
		Address:   "1 Main St",
		RentPrice: 1200,
	})
	require.NoError(t, err)

	f.tenant, err = f.svc.Tenants.Create(f.ctx, f.renter, TenantInput{
		UserID:  f.renter.UserID,
		Phone:   "555-0100",
		Address: "2 Side St",
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) signup(t *testing.T, name string, roleID int64) *auth.Principal {
	t.Helper()
	user, err := f.svc.Auth.Signup(f.ctx, SignupInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "correct-horse",
		RoleID:   roleID,
	})
	require.NoError(t, err)
	return auth.PrincipalFor(user)
}

func (f *fixture) rent(t *testing.T) *model.Rental {
	t.Helper()
	r, err := f.svc.Rentals.Create(f.ctx, f.landlord, RentalInput{
		ApartmentID: f.apartment.ID,
		TenantID:    f.tenant.ID,
		StartDate:   model.NewDate(2025, time.January, 1),
		EndDate:     model.NewDate(2025, time.December, 31),
		TotalAmount: 14400,
	})
	require.NoError(t, err)
	return r
}

// occupy marks the apartment rented the way an operator would.
func (f *fixture) occupy(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.SetApartmentStatus(f.ctx, f.apartment.ID, model.ApartmentRented))
}

func (f *fixture) apartmentStatus(t *testing.T) model.ApartmentStatus {
	t.Helper()
	apt, err := f.store.GetApartment(f.ctx, f.apartment.ID)
	require.NoError(t, err)
	return apt.Status
}
