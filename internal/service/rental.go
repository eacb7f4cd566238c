package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/monitoring"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

// Release reasons reported in metrics.
const (
	releaseStatusChange  = "status_change"
	releaseRentalDeleted = "rental_deleted"
	releaseTenantDeleted = "tenant_deleted"
)

// RentalInput carries the fields of a new rental. A new rental always
// starts active.
type RentalInput struct {
	ApartmentID int64      `json:"apartment_id"`
	TenantID    int64      `json:"tenant_id"`
	StartDate   model.Date `json:"start_date"`
	EndDate     model.Date `json:"end_date"`
	TotalAmount float64    `json:"total_amount"`
}

// RentalUpdate changes the set fields of a rental.
type RentalUpdate struct {
	StartDate   *model.Date         `json:"start_date"`
	EndDate     *model.Date         `json:"end_date"`
	TotalAmount *float64            `json:"total_amount"`
	Status      *model.RentalStatus `json:"status"`
}

// RentalManager owns rental state transitions and the release of the
// apartment when a rental stops being active. Each operation runs in one
// transaction so a terminal rental is never visible next to a held
// apartment.
type RentalManager struct {
	store store.Store
}

// NewRentalManager creates a RentalManager.
func NewRentalManager(st store.Store) *RentalManager {
	return &RentalManager{store: st}
}

func validateRentalTerms(start, end model.Date, amount float64) error {
	if amount < 0 {
		return invalid("total_amount must not be negative")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start.Time) {
		return invalid("end_date must not be before start_date")
	}
	return nil
}

// authorizeApartment loads the apartment a rental belongs to and checks that
// p may manage it.
func authorizeApartment(ctx context.Context, q store.Queries, p *auth.Principal, apartmentID int64) (*model.Apartment, error) {
	apt, err := q.GetApartment(ctx, apartmentID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(p, apt.LandlordID); err != nil {
		return nil, err
	}
	return apt, nil
}

// Create opens an active rental. It neither checks the apartment is
// available nor marks it rented.
func (m *RentalManager) Create(ctx context.Context, p *auth.Principal, in RentalInput) (*model.Rental, error) {
	if err := validateRentalTerms(in.StartDate, in.EndDate, in.TotalAmount); err != nil {
		return nil, err
	}

	rental := &model.Rental{
		ApartmentID: in.ApartmentID,
		TenantID:    in.TenantID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      model.RentalActive,
		TotalAmount: in.TotalAmount,
	}
	err := m.store.InTx(ctx, func(q store.Queries) error {
		if _, err := authorizeApartment(ctx, q, p, in.ApartmentID); err != nil {
			return err
		}
		if _, err := q.GetTenant(ctx, in.TenantID); err != nil {
			return err
		}
		if err := q.CreateRental(ctx, rental); err != nil {
			return err
		}
		return q.InsertRentalEvent(ctx, &model.RentalEvent{
			RentalID:    rental.ID,
			ApartmentID: rental.ApartmentID,
			Action:      model.RentalEventCreated,
			ToStatus:    model.RentalActive,
		})
	})
	if err != nil {
		return nil, err
	}

	monitoring.RentalTransitions.WithLabelValues("", string(model.RentalActive)).Inc()
	log.Ctx(ctx).Info().
		Int64("rental_id", rental.ID).
		Int64("apartment_id", rental.ApartmentID).
		Msg("Rental created")
	return rental, nil
}

// Get returns one rental.
func (m *RentalManager) Get(ctx context.Context, id int64) (*model.Rental, error) {
	return m.store.GetRental(ctx, id)
}

// List returns a page of rentals.
func (m *RentalManager) List(ctx context.Context, page store.Page) ([]model.Rental, error) {
	return m.store.ListRentals(ctx, page)
}

// ListEvents returns the audit trail of a rental. The trail outlives the
// rental itself.
func (m *RentalManager) ListEvents(ctx context.Context, id int64) ([]model.RentalEvent, error) {
	return m.store.ListRentalEvents(ctx, id)
}

// UpdateStatus moves a rental to status.
func (m *RentalManager) UpdateStatus(ctx context.Context, p *auth.Principal, id int64, status model.RentalStatus) (*model.Rental, error) {
	return m.Update(ctx, p, id, RentalUpdate{Status: &status})
}

// Update applies upd. A status change out of a terminal state fails with
// model.ErrConflict; moving to ended or cancelled releases the apartment
// in the same transaction.
func (m *RentalManager) Update(ctx context.Context, p *auth.Principal, id int64, upd RentalUpdate) (*model.Rental, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, invalid("unknown rental status %q", *upd.Status)
	}

	var (
		rental   *model.Rental
		from     model.RentalStatus
		released bool
	)
	err := m.store.InTx(ctx, func(q store.Queries) error {
		var err error
		rental, err = q.GetRentalForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeApartment(ctx, q, p, rental.ApartmentID); err != nil {
			return err
		}

		from = rental.Status
		if upd.Status != nil {
			if !from.CanTransition(*upd.Status) {
				return conflictf("rental is %s and cannot become %s", from, *upd.Status)
			}
			rental.Status = *upd.Status
		}
		if upd.StartDate != nil {
			rental.StartDate = *upd.StartDate
		}
		if upd.EndDate != nil {
			rental.EndDate = *upd.EndDate
		}
		if upd.TotalAmount != nil {
			rental.TotalAmount = *upd.TotalAmount
		}
		if err := validateRentalTerms(rental.StartDate, rental.EndDate, rental.TotalAmount); err != nil {
			return err
		}

		if rental.Status != from && rental.Status.Terminal() {
			if err := q.SetApartmentStatus(ctx, rental.ApartmentID, model.ApartmentAvailable); err != nil {
				return fmt.Errorf("release apartment: %w", err)
			}
			released = true
		}
		if err := q.UpdateRental(ctx, rental); err != nil {
			return err
		}
		return q.InsertRentalEvent(ctx, &model.RentalEvent{
			RentalID:    rental.ID,
			ApartmentID: rental.ApartmentID,
			Action:      model.RentalEventUpdated,
			FromStatus:  from,
			ToStatus:    rental.Status,
			Released:    released,
		})
	})
	if err != nil {
		return nil, err
	}

	if rental.Status != from {
		monitoring.RentalTransitions.WithLabelValues(string(from), string(rental.Status)).Inc()
	}
	if released {
		monitoring.ApartmentReleases.WithLabelValues(releaseStatusChange).Inc()
	}
	log.Ctx(ctx).Info().
		Int64("rental_id", rental.ID).
		Str("from", string(from)).
		Str("to", string(rental.Status)).
		Bool("released", released).
		Msg("Rental updated")
	return rental, nil
}

// Delete removes a rental with its payments. Deleting an active rental
// releases its apartment first.
func (m *RentalManager) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	var released bool
	err := m.store.InTx(ctx, func(q store.Queries) error {
		rental, err := q.GetRentalForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeApartment(ctx, q, p, rental.ApartmentID); err != nil {
			return err
		}
		released, err = removeRental(ctx, q, rental, true)
		return err
	})
	if err != nil {
		return err
	}

	if released {
		monitoring.ApartmentReleases.WithLabelValues(releaseRentalDeleted).Inc()
	}
	log.Ctx(ctx).Info().Int64("rental_id", id).Bool("released", released).Msg("Rental deleted")
	return nil
}

// removeRental deletes rental and its payments inside an open transaction.
// When release is set and the rental is active its apartment goes back to
// available. It reports whether a release happened.
func removeRental(ctx context.Context, q store.Queries, rental *model.Rental, release bool) (bool, error) {
	released := false
	if release && rental.Status == model.RentalActive {
		err := q.SetApartmentStatus(ctx, rental.ApartmentID, model.ApartmentAvailable)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return false, fmt.Errorf("release apartment: %w", err)
		}
		released = err == nil
	}
	if _, err := q.DeletePaymentsByRental(ctx, rental.ID); err != nil {
		return false, err
	}
	if err := q.InsertRentalEvent(ctx, &model.RentalEvent{
		RentalID:    rental.ID,
		ApartmentID: rental.ApartmentID,
		Action:      model.RentalEventDeleted,
		FromStatus:  rental.Status,
		Released:    released,
	}); err != nil {
		return false, err
	}
	if err := q.DeleteRental(ctx, rental.ID); err != nil {
		return false, err
	}
	return released, nil
}
