package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/monitoring"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

func TestRentalManager_CreateStartsActive(t *testing.T) {
	f := newFixture(t)

	r := f.rent(t)
	assert.Equal(t, model.RentalActive, r.Status)
	assert.NotZero(t, r.ID)
	// Creating a rental does not mark the apartment rented.
	assert.Equal(t, model.ApartmentAvailable, f.apartmentStatus(t))

	events, err := f.svc.Rentals.ListEvents(f.ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.RentalEventCreated, events[0].Action)
}

func TestRentalManager_CreateChecksReferences(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Rentals.Create(f.ctx, f.landlord, RentalInput{ApartmentID: 999, TenantID: f.tenant.ID})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Rentals.Create(f.ctx, f.landlord, RentalInput{ApartmentID: f.apartment.ID, TenantID: 999})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Rentals.Create(f.ctx, f.renter, RentalInput{ApartmentID: f.apartment.ID, TenantID: f.tenant.ID})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.svc.Rentals.Create(f.ctx, f.landlord, RentalInput{
		ApartmentID: f.apartment.ID,
		TenantID:    f.tenant.ID,
		StartDate:   model.NewDate(2025, time.March, 1),
		EndDate:     model.NewDate(2025, time.February, 1),
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRentalManager_OverlappingRentalsAllowed(t *testing.T) {
	f := newFixture(t)

	first := f.rent(t)
	second := f.rent(t)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRentalManager_EndReleasesApartment(t *testing.T) {
	f := newFixture(t)
	r := f.rent(t)
	f.occupy(t)

	before := testutil.ToFloat64(monitoring.ApartmentReleases.WithLabelValues(releaseStatusChange))

	got, err := f.svc.Rentals.UpdateStatus(f.ctx, f.landlord, r.ID, model.RentalEnded)
	require.NoError(t, err)
	assert.Equal(t, model.RentalEnded, got.Status)
	assert.Equal(t, model.ApartmentAvailable, f.apartmentStatus(t))
	assert.Equal(t, before+1, testutil.ToFloat64(monitoring.ApartmentReleases.WithLabelValues(releaseStatusChange)))

	// A terminal rental cannot be resurrected.
	_, err = f.svc.Rentals.UpdateStatus(f.ctx, f.landlord, r.ID, model.RentalActive)
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = f.svc.Rentals.UpdateStatus(f.ctx, f.landlord, r.ID, model.RentalCancelled)
	assert.ErrorIs(t, err, model.ErrConflict)

	stored, err := f.svc.Rentals.Get(f.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RentalEnded, stored.Status)
}

func TestRentalManager_ResendTerminalIsIdempotent(t *testing.T) {
	f := newFixture(t)
	r := f.rent(t)

	_, err := f.svc.Rentals.UpdateStatus(f.ctx, f.landlord, r.ID, model.RentalCancelled)
	require.NoError(t, err)

	// The apartment is re-occupied by something else; resending the same
	// terminal status must not release it again.
	f.occupy(t)
	got, err := f.svc.Rentals.UpdateStatus(f.ctx, f.landlord, r.ID, model.RentalCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.RentalCancelled, got.Status)
	assert.Equal(t, model.ApartmentRented, f.apartmentStatus(t))

	events, err := f.svc.Rentals.ListEvents(f.ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[1].Released)
	assert.False(t, events[2].Released)
}

func TestRentalManager_UpdateFields(t *testing.T) {
	f := newFixture(t)
	r := f.rent(t)

	amount := 9000.0
	end := model.NewDate(2025, time.June, 30)
	got, err := f.svc.Rentals.Update(f.ctx, f.admin, r.ID, RentalUpdate{TotalAmount: &amount, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 9000.0, got.TotalAmount)
	assert.Equal(t, end, got.EndDate)
	assert.Equal(t, model.RentalActive, got.Status)

	bogus := model.RentalStatus("paused")
	_, err = f.svc.Rentals.Update(f.ctx, f.admin, r.ID, RentalUpdate{Status: &bogus})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Rentals.UpdateStatus(f.ctx, f.landlord, 999, model.RentalEnded)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Rentals.UpdateStatus(f.ctx, f.renter, r.ID, model.RentalEnded)
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestRentalManager_DeleteActiveReleases(t *testing.T) {
	f := newFixture(t)
	r := f.rent(t)
	f.occupy(t)

	_, err := f.svc.Payments.Create(f.ctx, f.landlord, PaymentInput{RentalID: r.ID, Amount: 1200, Method: model.PaymentCash})
	require.NoError(t, err)

	require.NoError(t, f.svc.Rentals.Delete(f.ctx, f.landlord, r.ID))
	assert.Equal(t, model.ApartmentAvailable, f.apartmentStatus(t))

	_, err = f.svc.Rentals.Get(f.ctx, r.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	payments, err := f.svc.Payments.List(f.ctx, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, payments)

	events, err := f.svc.Rentals.ListEvents(f.ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.RentalEventDeleted, events[1].Action)
	assert.True(t, events[1].Released)
}

func TestRentalManager_DeleteEndedLeavesApartment(t *testing.T) {
	f := newFixture(t)
	r := f.rent(t)

	_, err := f.svc.Rentals.UpdateStatus(f.ctx, f.landlord, r.ID, model.RentalEnded)
	require.NoError(t, err)
	f.occupy(t)

	require.NoError(t, f.svc.Rentals.Delete(f.ctx, f.landlord, r.ID))
	assert.Equal(t, model.ApartmentRented, f.apartmentStatus(t))

	assert.ErrorIs(t, f.svc.Rentals.Delete(f.ctx, f.landlord, r.ID), model.ErrNotFound)
}

func TestRentalManager_List(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.rent(t)
	}

	rentals, err := f.svc.Rentals.List(f.ctx, store.Page{Offset: 1, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, rentals, 2)
}
