package store

import (
	"context"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

const rentalColumns = `id, apartment_id, tenant_id, start_date, end_date, status, COALESCE(total_amount, 0), created_at`

func scanRental(row interface{ Scan(...any) error }) (*model.Rental, error) {
	rental := &model.Rental{}
	err := row.Scan(&rental.ID, &rental.ApartmentID, &rental.TenantID, &rental.StartDate, &rental.EndDate,
		&rental.Status, &rental.TotalAmount, &rental.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rental, nil
}

func (r *queries) listRentals(ctx context.Context, query string, args ...any) ([]model.Rental, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []model.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rental)
	}
	return rentals, rows.Err()
}

func (r *queries) CreateRental(ctx context.Context, rental *model.Rental) error {
	query := `INSERT INTO rentals (apartment_id, tenant_id, start_date, end_date, status, total_amount)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id, created_at`
	err := r.q.QueryRowContext(ctx, query, rental.ApartmentID, rental.TenantID, rental.StartDate, rental.EndDate,
		rental.Status, rental.TotalAmount).Scan(&rental.ID, &rental.CreatedAt)
	return mapError(err, "rental")
}

func (r *queries) GetRental(ctx context.Context, id int64) (*model.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rental, err := scanRental(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "rental")
	}
	return rental, nil
}

// GetRentalForUpdate locks the rental row until the surrounding transaction
// ends.
func (r *queries) GetRentalForUpdate(ctx context.Context, id int64) (*model.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 FOR UPDATE`
	rental, err := scanRental(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "rental")
	}
	return rental, nil
}

func (r *queries) ListRentals(ctx context.Context, page Page) ([]model.Rental, error) {
	limit, offset := limitOffset(page)
	query := `SELECT ` + rentalColumns + ` FROM rentals ORDER BY id LIMIT $1 OFFSET $2`
	return r.listRentals(ctx, query, limit, offset)
}

func (r *queries) ListRentalsByApartment(ctx context.Context, apartmentID int64) ([]model.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE apartment_id = $1 ORDER BY id FOR UPDATE`
	return r.listRentals(ctx, query, apartmentID)
}

func (r *queries) ListRentalsByTenant(ctx context.Context, tenantID int64) ([]model.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE tenant_id = $1 ORDER BY id FOR UPDATE`
	return r.listRentals(ctx, query, tenantID)
}

func (r *queries) UpdateRental(ctx context.Context, rental *model.Rental) error {
	query := `UPDATE rentals SET start_date = $2, end_date = $3, status = $4, total_amount = $5 WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, rental.ID, rental.StartDate, rental.EndDate, rental.Status, rental.TotalAmount)
	if err != nil {
		return mapError(err, "rental")
	}
	return expectAffected(res, "rental")
}

func (r *queries) DeleteRental(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "rental")
	}
	return expectAffected(res, "rental")
}

func (r *queries) InsertRentalEvent(ctx context.Context, event *model.RentalEvent) error {
	query := `INSERT INTO rental_events (rental_id, apartment_id, action, from_status, to_status, released)
              VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
              RETURNING id, created_at`
	err := r.q.QueryRowContext(ctx, query, event.RentalID, event.ApartmentID, event.Action,
		string(event.FromStatus), string(event.ToStatus), event.Released).Scan(&event.ID, &event.CreatedAt)
	return mapError(err, "rental event")
}

func (r *queries) ListRentalEvents(ctx context.Context, rentalID int64) ([]model.RentalEvent, error) {
	query := `SELECT id, rental_id, apartment_id, action, COALESCE(from_status, ''), COALESCE(to_status, ''), released, created_at
              FROM rental_events WHERE rental_id = $1 ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.RentalEvent
	for rows.Next() {
		var e model.RentalEvent
		if err := rows.Scan(&e.ID, &e.RentalID, &e.ApartmentID, &e.Action, &e.FromStatus, &e.ToStatus, &e.Released, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
