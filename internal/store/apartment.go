package store

import (
	"context"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

const apartmentColumns = `id, name, COALESCE(address, ''), COALESCE(rent_price, 0), COALESCE(description, ''), status, landlord_id, created_at`

func scanApartment(row interface{ Scan(...any) error }) (*model.Apartment, error) {
	apt := &model.Apartment{}
	err := row.Scan(&apt.ID, &apt.Name, &apt.Address, &apt.RentPrice, &apt.Description, &apt.Status, &apt.LandlordID, &apt.CreatedAt)
	if err != nil {
		return nil, err
	}
	return apt, nil
}

func (r *queries) CreateApartment(ctx context.Context, apt *model.Apartment) error {
	if apt.Status == "" {
		apt.Status = model.ApartmentAvailable
	}
	query := `INSERT INTO apartments (name, address, rent_price, description, status, landlord_id)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id, created_at`
	err := r.q.QueryRowContext(ctx, query, apt.Name, apt.Address, apt.RentPrice, apt.Description, apt.Status, apt.LandlordID).
		Scan(&apt.ID, &apt.CreatedAt)
	return mapError(err, "apartment")
}

func (r *queries) GetApartment(ctx context.Context, id int64) (*model.Apartment, error) {
	query := `SELECT ` + apartmentColumns + ` FROM apartments WHERE id = $1`
	apt, err := scanApartment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "apartment")
	}
	return apt, nil
}

func (r *queries) ListApartments(ctx context.Context, page Page) ([]model.Apartment, error) {
	limit, offset := limitOffset(page)
	query := `SELECT ` + apartmentColumns + ` FROM apartments ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apts []model.Apartment
	for rows.Next() {
		apt, err := scanApartment(rows)
		if err != nil {
			return nil, err
		}
		apts = append(apts, *apt)
	}
	return apts, rows.Err()
}

func (r *queries) UpdateApartment(ctx context.Context, apt *model.Apartment) error {
	query := `UPDATE apartments SET name = $2, address = $3, rent_price = $4, description = $5, status = $6
              WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, apt.ID, apt.Name, apt.Address, apt.RentPrice, apt.Description, apt.Status)
	if err != nil {
		return mapError(err, "apartment")
	}
	return expectAffected(res, "apartment")
}

func (r *queries) SetApartmentStatus(ctx context.Context, id int64, status model.ApartmentStatus) error {
	res, err := r.q.ExecContext(ctx, `UPDATE apartments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapError(err, "apartment")
	}
	return expectAffected(res, "apartment")
}

func (r *queries) DeleteApartment(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM apartments WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "apartment")
	}
	return expectAffected(res, "apartment")
}

func (r *queries) CountApartmentsByLandlord(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM apartments WHERE landlord_id = $1`, userID).Scan(&n)
	return n, err
}
