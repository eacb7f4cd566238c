package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

func TestStore_InTxRollsBack(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	user := &model.User{Username: "lee", Email: "lee@example.com", HashedPassword: "x", RoleID: model.RoleIDLandlord}
	require.NoError(t, s.CreateUser(ctx, user))
	apt := &model.Apartment{Name: "Loft", LandlordID: user.ID}
	require.NoError(t, s.CreateApartment(ctx, apt))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(q store.Queries) error {
		if err := q.SetApartmentStatus(ctx, apt.ID, model.ApartmentRented); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetApartment(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApartmentAvailable, got.Status)

	require.NoError(t, s.InTx(ctx, func(q store.Queries) error {
		return q.SetApartmentStatus(ctx, apt.ID, model.ApartmentMaintenance)
	}))
	got, err = s.GetApartment(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApartmentMaintenance, got.Status)
}

func TestStore_UserConstraints(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &model.User{Username: "Alice", Email: "alice@example.com", RoleID: 3}))

	err := s.CreateUser(ctx, &model.User{Username: "alice", Email: "other@example.com", RoleID: 3})
	assert.ErrorIs(t, err, model.ErrConflict)

	err = s.CreateUser(ctx, &model.User{Username: "bob", Email: "bob@example.com", RoleID: 42})
	assert.ErrorIs(t, err, model.ErrConflict)

	u, err := s.GetUserByLogin(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)
	require.NotNil(t, u.Role)
	assert.Equal(t, "Tenant", u.Role.Name)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = s.DeleteRole(ctx, model.RoleIDTenant)
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestStore_ForeignKeys(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	landlord := &model.User{Username: "lee", Email: "lee@example.com", RoleID: 2}
	require.NoError(t, s.CreateUser(ctx, landlord))
	renter := &model.User{Username: "ren", Email: "ren@example.com", RoleID: 3}
	require.NoError(t, s.CreateUser(ctx, renter))

	apt := &model.Apartment{Name: "Loft", LandlordID: landlord.ID}
	require.NoError(t, s.CreateApartment(ctx, apt))
	tenant := &model.Tenant{UserID: renter.ID, Phone: "555"}
	require.NoError(t, s.CreateTenant(ctx, tenant))

	rental := &model.Rental{ApartmentID: apt.ID, TenantID: tenant.ID, Status: model.RentalActive}
	require.NoError(t, s.CreateRental(ctx, rental))
	require.NoError(t, s.CreatePayment(ctx, &model.Payment{RentalID: rental.ID, Amount: 10}))

	assert.ErrorIs(t, s.DeleteRental(ctx, rental.ID), model.ErrConflict)
	assert.ErrorIs(t, s.DeleteApartment(ctx, apt.ID), model.ErrConflict)
	assert.ErrorIs(t, s.DeleteUser(ctx, landlord.ID), model.ErrConflict)

	n, err := s.DeletePaymentsByRental(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, s.DeleteRental(ctx, rental.ID))
}

func TestStore_Paging(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	owner := &model.User{Username: "lee", Email: "lee@example.com", RoleID: 2}
	require.NoError(t, s.CreateUser(ctx, owner))
	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateApartment(ctx, &model.Apartment{Name: "A", LandlordID: owner.ID}))
	}

	apts, err := s.ListApartments(ctx, store.Page{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, apts, 2)
	assert.Equal(t, int64(2), apts[0].ID)
	assert.Equal(t, int64(3), apts[1].ID)

	apts, err = s.ListApartments(ctx, store.Page{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, apts)
}
