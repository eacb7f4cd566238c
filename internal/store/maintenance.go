package store

import (
	"context"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

const maintenanceColumns = `id, apartment_id, tenant_id, description, request_date, status`

func scanMaintenance(row interface{ Scan(...any) error }) (*model.MaintenanceRequest, error) {
	m := &model.MaintenanceRequest{}
	if err := row.Scan(&m.ID, &m.ApartmentID, &m.TenantID, &m.Description, &m.RequestDate, &m.Status); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *queries) CreateMaintenanceRequest(ctx context.Context, req *model.MaintenanceRequest) error {
	if req.Status == "" {
		req.Status = model.MaintenancePending
	}
	query := `INSERT INTO maintenance_requests (apartment_id, tenant_id, description, request_date, status)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING id`
	err := r.q.QueryRowContext(ctx, query, req.ApartmentID, req.TenantID, req.Description, req.RequestDate, req.Status).
		Scan(&req.ID)
	return mapError(err, "maintenance request")
}

func (r *queries) GetMaintenanceRequest(ctx context.Context, id int64) (*model.MaintenanceRequest, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests WHERE id = $1`
	m, err := scanMaintenance(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "maintenance request")
	}
	return m, nil
}

func (r *queries) ListMaintenanceRequests(ctx context.Context, page Page) ([]model.MaintenanceRequest, error) {
	limit, offset := limitOffset(page)
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []model.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *m)
	}
	return reqs, rows.Err()
}

func (r *queries) UpdateMaintenanceRequest(ctx context.Context, req *model.MaintenanceRequest) error {
	query := `UPDATE maintenance_requests SET apartment_id = $2, tenant_id = $3, description = $4, request_date = $5, status = $6
              WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, req.ID, req.ApartmentID, req.TenantID, req.Description, req.RequestDate, req.Status)
	if err != nil {
		return mapError(err, "maintenance request")
	}
	return expectAffected(res, "maintenance request")
}

func (r *queries) DeleteMaintenanceRequest(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM maintenance_requests WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "maintenance request")
	}
	return expectAffected(res, "maintenance request")
}

func (r *queries) DeleteMaintenanceByApartment(ctx context.Context, apartmentID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM maintenance_requests WHERE apartment_id = $1`, apartmentID)
	if err != nil {
		return 0, mapError(err, "maintenance request")
	}
	return res.RowsAffected()
}

func (r *queries) DeleteMaintenanceByTenant(ctx context.Context, tenantID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM maintenance_requests WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return 0, mapError(err, "maintenance request")
	}
	return res.RowsAffected()
}
