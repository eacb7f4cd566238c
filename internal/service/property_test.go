package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

func TestApartmentService_CreateRequiresLandlord(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Apartments.Create(f.ctx, f.renter, ApartmentInput{Name: "Flat", Address: "3 Road"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.svc.Apartments.Create(f.ctx, f.landlord, ApartmentInput{Name: "", Address: "3 Road"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Apartments.Create(f.ctx, f.landlord, ApartmentInput{Name: "Flat", Address: "3 Road", Status: "sold"})
	assert.ErrorIs(t, err, model.ErrValidation)

	assert.Equal(t, f.landlord.UserID, f.apartment.LandlordID)
	assert.Equal(t, model.ApartmentAvailable, f.apartment.Status)
}

func TestApartmentService_Update(t *testing.T) {
	f := newFixture(t)

	price := 1500.0
	_, err := f.svc.Apartments.Update(f.ctx, f.renter, f.apartment.ID, ApartmentUpdate{RentPrice: &price})
	assert.ErrorIs(t, err, model.ErrForbidden)

	got, err := f.svc.Apartments.Update(f.ctx, f.admin, f.apartment.ID, ApartmentUpdate{RentPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got.RentPrice)

	_, err = f.svc.Apartments.Update(f.ctx, f.admin, 999, ApartmentUpdate{RentPrice: &price})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestApartmentService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	r := f.rent(t)
	_, err := f.svc.Payments.Create(f.ctx, f.landlord, PaymentInput{RentalID: r.ID, Amount: 100, Method: model.PaymentBankTransfer})
	require.NoError(t, err)
	_, err = f.svc.Maintenance.Create(f.ctx, f.renter, MaintenanceInput{ApartmentID: f.apartment.ID, TenantID: f.tenant.ID, Description: "Leaky tap"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Apartments.Delete(f.ctx, f.renter, f.apartment.ID), model.ErrForbidden)
	require.NoError(t, f.svc.Apartments.Delete(f.ctx, f.landlord, f.apartment.ID))

	_, err = f.svc.Apartments.Get(f.ctx, f.apartment.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.svc.Rentals.Get(f.ctx, r.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	payments, err := f.svc.Payments.List(f.ctx, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, payments)
	requests, err := f.svc.Maintenance.List(f.ctx, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, requests)

	// The tenant survives its apartment.
	_, err = f.svc.Tenants.Get(f.ctx, f.tenant.ID)
	assert.NoError(t, err)
}

func TestTenantService_Create(t *testing.T) {
	f := newFixture(t)
	other := f.signup(t, "otto", model.RoleIDTenant)

	_, err := f.svc.Tenants.Create(f.ctx, f.admin, TenantInput{UserID: 999, Phone: "555-0199"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Tenants.Create(f.ctx, other, TenantInput{UserID: other.UserID, Phone: "  "})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Tenants.Create(f.ctx, other, TenantInput{UserID: other.UserID, Phone: "555-0100"})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = f.svc.Tenants.Create(f.ctx, f.renter, TenantInput{UserID: f.renter.UserID, Phone: "555-0101"})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = f.svc.Tenants.Create(f.ctx, f.renter, TenantInput{UserID: other.UserID, Phone: "555-0102"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	created, err := f.svc.Tenants.Create(f.ctx, other, TenantInput{UserID: other.UserID, Phone: "555-0102"})
	require.NoError(t, err)
	assert.Equal(t, "555-0102", created.Phone)
}

func TestTenantService_Update(t *testing.T) {
	f := newFixture(t)

	addr := "9 New St"
	got, err := f.svc.Tenants.Update(f.ctx, f.renter, f.tenant.ID, TenantUpdate{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, "9 New St", got.Address)

	missing := int64(999)
	_, err = f.svc.Tenants.Update(f.ctx, f.admin, f.tenant.ID, TenantUpdate{UserID: &missing})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Tenants.Update(f.ctx, f.landlord, f.tenant.ID, TenantUpdate{Address: &addr})
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestTenantService_DeleteReleasesActiveRentals(t *testing.T) {
	f := newFixture(t)
	active := f.rent(t)
	ended := f.rent(t)
	_, err := f.svc.Rentals.UpdateStatus(f.ctx, f.landlord, ended.ID, model.RentalEnded)
	require.NoError(t, err)
	f.occupy(t)

	_, err = f.svc.Maintenance.Create(f.ctx, f.landlord, MaintenanceInput{ApartmentID: f.apartment.ID, TenantID: f.tenant.ID, Description: "Broken heater"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Tenants.Delete(f.ctx, f.admin, f.tenant.ID))
	assert.Equal(t, model.ApartmentAvailable, f.apartmentStatus(t))

	for _, id := range []int64{active.ID, ended.ID} {
		_, err := f.svc.Rentals.Get(f.ctx, id)
		assert.ErrorIs(t, err, model.ErrNotFound)
	}
	requests, err := f.svc.Maintenance.List(f.ctx, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, requests)

	// The user account stays.
	_, err = f.svc.Users.Get(f.ctx, f.renter.UserID)
	assert.NoError(t, err)
}

func TestPaymentService(t *testing.T) {
	f := newFixture(t)
	r := f.rent(t)

	_, err := f.svc.Payments.Create(f.ctx, f.landlord, PaymentInput{RentalID: 999, Amount: 10, Method: model.PaymentCash})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Payments.Create(f.ctx, f.landlord, PaymentInput{RentalID: r.ID, Amount: 10, Method: "cheque"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Payments.Create(f.ctx, f.renter, PaymentInput{RentalID: r.ID, Amount: 10, Method: model.PaymentCash})
	assert.ErrorIs(t, err, model.ErrForbidden)

	p, err := f.svc.Payments.Create(f.ctx, f.landlord, PaymentInput{RentalID: r.ID, Amount: 10, Method: model.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, p.Status)
	assert.False(t, p.PaymentDate.IsZero())

	updated, err := f.svc.Payments.Update(f.ctx, f.landlord, p.ID, PaymentInput{
		RentalID: r.ID, Amount: 20, Method: model.PaymentCreditCard, Status: model.PaymentCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, updated.Status)

	got, err := f.svc.Payments.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Amount)

	require.NoError(t, f.svc.Payments.Delete(f.ctx, f.admin, p.ID))
	assert.ErrorIs(t, f.svc.Payments.Delete(f.ctx, f.admin, p.ID), model.ErrNotFound)
}

func TestMaintenanceService(t *testing.T) {
	f := newFixture(t)
	stranger := f.signup(t, "sam", model.RoleIDTenant)

	_, err := f.svc.Maintenance.Create(f.ctx, f.renter, MaintenanceInput{ApartmentID: 999, TenantID: f.tenant.ID, Description: "x"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Maintenance.Create(f.ctx, f.renter, MaintenanceInput{ApartmentID: f.apartment.ID, TenantID: 999, Description: "x"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Maintenance.Create(f.ctx, stranger, MaintenanceInput{ApartmentID: f.apartment.ID, TenantID: f.tenant.ID, Description: "x"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	req, err := f.svc.Maintenance.Create(f.ctx, f.renter, MaintenanceInput{ApartmentID: f.apartment.ID, TenantID: f.tenant.ID, Description: "Mould"})
	require.NoError(t, err)
	assert.Equal(t, model.MaintenancePending, req.Status)

	got, err := f.svc.Maintenance.Update(f.ctx, f.landlord, req.ID, MaintenanceInput{
		ApartmentID: f.apartment.ID, TenantID: f.tenant.ID, Description: "Mould", Status: model.MaintenanceInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, model.MaintenanceInProgress, got.Status)
	// Maintenance never touches the apartment status.
	assert.Equal(t, model.ApartmentAvailable, f.apartmentStatus(t))

	assert.ErrorIs(t, f.svc.Maintenance.Delete(f.ctx, stranger, req.ID), model.ErrForbidden)
	require.NoError(t, f.svc.Maintenance.Delete(f.ctx, f.renter, req.ID))
}
