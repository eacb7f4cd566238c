package memory

import (
	"context"

	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

func (d *dataset) checkRental(r *model.Rental) error {
	if _, ok := d.apartments[r.ApartmentID]; !ok {
		return conflict("apartment %d does not exist", r.ApartmentID)
	}
	if _, ok := d.tenants[r.TenantID]; !ok {
		return conflict("tenant %d does not exist", r.TenantID)
	}
	return nil
}

func (q *queries) CreateRental(_ context.Context, rental *model.Rental) error {
	d, unlock := q.acquire()
	defer unlock()

	if err := d.checkRental(rental); err != nil {
		return err
	}
	rental.ID = d.next("rentals")
	rental.CreatedAt = q.s.now()
	d.rentals[rental.ID] = *rental
	return nil
}

func (q *queries) GetRental(_ context.Context, id int64) (*model.Rental, error) {
	d, unlock := q.acquire()
	defer unlock()

	r, ok := d.rentals[id]
	if !ok {
		return nil, notFound("rental")
	}
	return &r, nil
}

// GetRentalForUpdate is GetRental; transactions already hold the store lock.
func (q *queries) GetRentalForUpdate(ctx context.Context, id int64) (*model.Rental, error) {
	return q.GetRental(ctx, id)
}

func (q *queries) ListRentals(_ context.Context, p store.Page) ([]model.Rental, error) {
	d, unlock := q.acquire()
	defer unlock()
	return page(d.rentals, p, nil), nil
}

func (q *queries) ListRentalsByApartment(_ context.Context, apartmentID int64) ([]model.Rental, error) {
	d, unlock := q.acquire()
	defer unlock()
	return all(d.rentals, func(r model.Rental) bool { return r.ApartmentID == apartmentID }), nil
}

func (q *queries) ListRentalsByTenant(_ context.Context, tenantID int64) ([]model.Rental, error) {
	d, unlock := q.acquire()
	defer unlock()
	return all(d.rentals, func(r model.Rental) bool { return r.TenantID == tenantID }), nil
}

func (q *queries) UpdateRental(_ context.Context, rental *model.Rental) error {
	d, unlock := q.acquire()
	defer unlock()

	existing, ok := d.rentals[rental.ID]
	if !ok {
		return notFound("rental")
	}
	existing.StartDate = rental.StartDate
	existing.EndDate = rental.EndDate
	existing.Status = rental.Status
	existing.TotalAmount = rental.TotalAmount
	d.rentals[rental.ID] = existing
	return nil
}

func (q *queries) DeleteRental(_ context.Context, id int64) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.rentals[id]; !ok {
		return notFound("rental")
	}
	for _, p := range d.payments {
		if p.RentalID == id {
			return conflict("rental %d still has payments", id)
		}
	}
	delete(d.rentals, id)
	return nil
}

func (q *queries) InsertRentalEvent(_ context.Context, event *model.RentalEvent) error {
	d, unlock := q.acquire()
	defer unlock()

	event.ID = d.next("rental_events")
	event.CreatedAt = q.s.now()
	d.events[event.ID] = *event
	return nil
}

func (q *queries) ListRentalEvents(_ context.Context, rentalID int64) ([]model.RentalEvent, error) {
	d, unlock := q.acquire()
	defer unlock()
	return all(d.events, func(e model.RentalEvent) bool { return e.RentalID == rentalID }), nil
}

func (q *queries) CreatePayment(_ context.Context, payment *model.Payment) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.rentals[payment.RentalID]; !ok {
		return conflict("rental %d does not exist", payment.RentalID)
	}
	payment.ID = d.next("payments")
	d.payments[payment.ID] = *payment
	return nil
}

func (q *queries) GetPayment(_ context.Context, id int64) (*model.Payment, error) {
	d, unlock := q.acquire()
	defer unlock()

	p, ok := d.payments[id]
	if !ok {
		return nil, notFound("payment")
	}
	return &p, nil
}

func (q *queries) ListPayments(_ context.Context, p store.Page) ([]model.Payment, error) {
	d, unlock := q.acquire()
	defer unlock()
	return page(d.payments, p, nil), nil
}

func (q *queries) UpdatePayment(_ context.Context, payment *model.Payment) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.payments[payment.ID]; !ok {
		return notFound("payment")
	}
	if _, ok := d.rentals[payment.RentalID]; !ok {
		return conflict("rental %d does not exist", payment.RentalID)
	}
	d.payments[payment.ID] = *payment
	return nil
}

func (q *queries) DeletePayment(_ context.Context, id int64) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.payments[id]; !ok {
		return notFound("payment")
	}
	delete(d.payments, id)
	return nil
}

func (q *queries) DeletePaymentsByRental(_ context.Context, rentalID int64) (int64, error) {
	d, unlock := q.acquire()
	defer unlock()

	var n int64
	for id, p := range d.payments {
		if p.RentalID == rentalID {
			delete(d.payments, id)
			n++
		}
	}
	return n, nil
}
