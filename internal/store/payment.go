package store

import (
	"context"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

const paymentColumns = `id, rental_id, payment_date, amount, payment_method, status`

func scanPayment(row interface{ Scan(...any) error }) (*model.Payment, error) {
	p := &model.Payment{}
	if err := row.Scan(&p.ID, &p.RentalID, &p.PaymentDate, &p.Amount, &p.Method, &p.Status); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *queries) CreatePayment(ctx context.Context, payment *model.Payment) error {
	query := `INSERT INTO payments (rental_id, payment_date, amount, payment_method, status)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING id`
	err := r.q.QueryRowContext(ctx, query, payment.RentalID, payment.PaymentDate, payment.Amount, payment.Method, payment.Status).
		Scan(&payment.ID)
	return mapError(err, "payment")
}

func (r *queries) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "payment")
	}
	return p, nil
}

func (r *queries) ListPayments(ctx context.Context, page Page) ([]model.Payment, error) {
	limit, offset := limitOffset(page)
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *queries) UpdatePayment(ctx context.Context, payment *model.Payment) error {
	query := `UPDATE payments SET rental_id = $2, payment_date = $3, amount = $4, payment_method = $5, status = $6
              WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, payment.ID, payment.RentalID, payment.PaymentDate, payment.Amount, payment.Method, payment.Status)
	if err != nil {
		return mapError(err, "payment")
	}
	return expectAffected(res, "payment")
}

func (r *queries) DeletePayment(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "payment")
	}
	return expectAffected(res, "payment")
}

func (r *queries) DeletePaymentsByRental(ctx context.Context, rentalID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM payments WHERE rental_id = $1`, rentalID)
	if err != nil {
		return 0, mapError(err, "payment")
	}
	return res.RowsAffected()
}
