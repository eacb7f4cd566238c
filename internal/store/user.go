package store

import (
	"context"
	"database/sql"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

const userColumns = `u.id, u.username, u.email, u.hashed_password, u.role_id, u.created_at, r.id, r.name`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	user := &model.User{}
	var roleID sql.NullInt64
	var roleName sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.RoleID, &user.CreatedAt, &roleID, &roleName)
	if err != nil {
		return nil, err
	}
	if roleID.Valid {
		user.Role = &model.Role{ID: roleID.Int64, Name: roleName.String}
	}
	return user, nil
}

func (r *queries) CreateUser(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, email, hashed_password, role_id)
              VALUES ($1, $2, $3, $4)
              RETURNING id, created_at`
	err := r.q.QueryRowContext(ctx, query, user.Username, user.Email, user.HashedPassword, user.RoleID).
		Scan(&user.ID, &user.CreatedAt)
	return mapError(err, "user")
}

func (r *queries) GetUser(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u LEFT JOIN roles r ON r.id = u.role_id WHERE u.id = $1`
	user, err := scanUser(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return user, nil
}

// GetUserByLogin matches identifier against username or email, ignoring case.
func (r *queries) GetUserByLogin(ctx context.Context, identifier string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u LEFT JOIN roles r ON r.id = u.role_id
              WHERE lower(u.username) = lower($1) OR lower(u.email) = lower($1)
              ORDER BY u.id LIMIT 1`
	user, err := scanUser(r.q.QueryRowContext(ctx, query, identifier))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return user, nil
}

// FindUserConflict returns a user other than excludeID that already holds
// username or email.
func (r *queries) FindUserConflict(ctx context.Context, username, email string, excludeID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u LEFT JOIN roles r ON r.id = u.role_id
              WHERE (lower(u.username) = lower($1) OR lower(u.email) = lower($2)) AND u.id <> $3
              ORDER BY u.id LIMIT 1`
	user, err := scanUser(r.q.QueryRowContext(ctx, query, username, email, excludeID))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return user, nil
}

func (r *queries) ListUsers(ctx context.Context, page Page) ([]model.User, error) {
	limit, offset := limitOffset(page)
	query := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id
              ORDER BY u.id LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *queries) UpdateUser(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET username = $2, email = $3, hashed_password = $4, role_id = $5 WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.HashedPassword, user.RoleID)
	if err != nil {
		return mapError(err, "user")
	}
	return expectAffected(res, "user")
}

func (r *queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "user")
	}
	return expectAffected(res, "user")
}

func (r *queries) CountUsersByRole(ctx context.Context, roleID int64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role_id = $1`, roleID).Scan(&n)
	return n, err
}
