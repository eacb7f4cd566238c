package store

import (
	"context"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

func (r *queries) CreateRole(ctx context.Context, role *model.Role) error {
	query := `INSERT INTO roles (name) VALUES ($1) RETURNING id`
	err := r.q.QueryRowContext(ctx, query, role.Name).Scan(&role.ID)
	return mapError(err, "role")
}

func (r *queries) GetRole(ctx context.Context, id int64) (*model.Role, error) {
	query := `SELECT id, name FROM roles WHERE id = $1`
	role := &model.Role{}
	if err := r.q.QueryRowContext(ctx, query, id).Scan(&role.ID, &role.Name); err != nil {
		return nil, mapError(err, "role")
	}
	return role, nil
}

func (r *queries) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	query := `SELECT id, name FROM roles WHERE name = $1`
	role := &model.Role{}
	if err := r.q.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, mapError(err, "role")
	}
	return role, nil
}

func (r *queries) ListRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *queries) UpdateRole(ctx context.Context, role *model.Role) error {
	res, err := r.q.ExecContext(ctx, `UPDATE roles SET name = $2 WHERE id = $1`, role.ID, role.Name)
	if err != nil {
		return mapError(err, "role")
	}
	return expectAffected(res, "role")
}

func (r *queries) DeleteRole(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "role")
	}
	return expectAffected(res, "role")
}
