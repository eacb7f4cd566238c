package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/teresa-solution/rental-management-service/internal/crypto"
	"github.com/teresa-solution/rental-management-service/internal/model"
)

// Page bounds a list query.
type Page struct {
	Offset int
	Limit  int
}

// Queries is the persistence contract consumed by the services. Lookups
// return an error wrapping model.ErrNotFound when the row does not exist;
// unique and foreign key violations wrap model.ErrConflict.
type Queries interface {
	CreateRole(ctx context.Context, role *model.Role) error
	GetRole(ctx context.Context, id int64) (*model.Role, error)
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	UpdateRole(ctx context.Context, role *model.Role) error
	DeleteRole(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByLogin(ctx context.Context, identifier string) (*model.User, error)
	FindUserConflict(ctx context.Context, username, email string, excludeID int64) (*model.User, error)
	ListUsers(ctx context.Context, page Page) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
	CountUsersByRole(ctx context.Context, roleID int64) (int, error)

	CreateApartment(ctx context.Context, apt *model.Apartment) error
	GetApartment(ctx context.Context, id int64) (*model.Apartment, error)
	ListApartments(ctx context.Context, page Page) ([]model.Apartment, error)
	UpdateApartment(ctx context.Context, apt *model.Apartment) error
	SetApartmentStatus(ctx context.Context, id int64, status model.ApartmentStatus) error
	DeleteApartment(ctx context.Context, id int64) error
	CountApartmentsByLandlord(ctx context.Context, userID int64) (int, error)

	CreateTenant(ctx context.Context, tenant *model.Tenant) error
	GetTenant(ctx context.Context, id int64) (*model.Tenant, error)
	GetTenantByPhone(ctx context.Context, phone string) (*model.Tenant, error)
	GetTenantByUserID(ctx context.Context, userID int64) (*model.Tenant, error)
	ListTenants(ctx context.Context, page Page) ([]model.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *model.Tenant) error
	DeleteTenant(ctx context.Context, id int64) error

	CreateRental(ctx context.Context, rental *model.Rental) error
	GetRental(ctx context.Context, id int64) (*model.Rental, error)
	GetRentalForUpdate(ctx context.Context, id int64) (*model.Rental, error)
	ListRentals(ctx context.Context, page Page) ([]model.Rental, error)
	ListRentalsByApartment(ctx context.Context, apartmentID int64) ([]model.Rental, error)
	ListRentalsByTenant(ctx context.Context, tenantID int64) ([]model.Rental, error)
	UpdateRental(ctx context.Context, rental *model.Rental) error
	DeleteRental(ctx context.Context, id int64) error
	InsertRentalEvent(ctx context.Context, event *model.RentalEvent) error
	ListRentalEvents(ctx context.Context, rentalID int64) ([]model.RentalEvent, error)

	CreatePayment(ctx context.Context, payment *model.Payment) error
	GetPayment(ctx context.Context, id int64) (*model.Payment, error)
	ListPayments(ctx context.Context, page Page) ([]model.Payment, error)
	UpdatePayment(ctx context.Context, payment *model.Payment) error
	DeletePayment(ctx context.Context, id int64) error
	DeletePaymentsByRental(ctx context.Context, rentalID int64) (int64, error)

	CreateMaintenanceRequest(ctx context.Context, req *model.MaintenanceRequest) error
	GetMaintenanceRequest(ctx context.Context, id int64) (*model.MaintenanceRequest, error)
	ListMaintenanceRequests(ctx context.Context, page Page) ([]model.MaintenanceRequest, error)
	UpdateMaintenanceRequest(ctx context.Context, req *model.MaintenanceRequest) error
	DeleteMaintenanceRequest(ctx context.Context, id int64) error
	DeleteMaintenanceByApartment(ctx context.Context, apartmentID int64) (int64, error)
	DeleteMaintenanceByTenant(ctx context.Context, tenantID int64) (int64, error)
}

// Store is a Queries bound to a database plus a transactional boundary.
// Everything fn does through its Queries commits or rolls back as one unit.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
	Close() error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q      querier
	cipher *crypto.Cipher
}

// Postgres implements Store on PostgreSQL through the pgx database/sql driver.
type Postgres struct {
	*queries
	db *sql.DB
}

var _ Store = (*Postgres)(nil)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, cipher *crypto.Cipher) (*Postgres, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	db := stdlib.OpenDB(*config)
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(db, cipher), nil
}

// New wraps an open database handle.
func New(db *sql.DB, cipher *crypto.Cipher) *Postgres {
	return &Postgres{
		queries: &queries{q: db, cipher: cipher},
		db:      db,
	}
}

// DB exposes the underlying handle for migrations.
func (p *Postgres) DB() *sql.DB {
	return p.db
}

// InTx runs fn inside a single database transaction.
func (p *Postgres) InTx(ctx context.Context, fn func(q Queries) error) error {
	return p.inTx(ctx, func(q *queries) error { return fn(q) })
}

func (p *Postgres) inTx(ctx context.Context, fn func(q *queries) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&queries{q: tx, cipher: p.cipher}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

// SeedRoles creates or renames the fixed roles and advances the id sequence
// past them.
func (p *Postgres) SeedRoles(ctx context.Context, roles []model.Role) error {
	return p.inTx(ctx, func(q *queries) error {
		for _, r := range roles {
			query := `INSERT INTO roles (id, name) VALUES ($1, $2)
              ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`
			if _, err := q.q.ExecContext(ctx, query, r.ID, r.Name); err != nil {
				return mapError(err, "role")
			}
		}
		_, err := q.q.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('roles', 'id'), (SELECT MAX(id) FROM roles))`)
		return err
	})
}

func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s not found", model.ErrNotFound, entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s already exists (%s)", model.ErrConflict, entity, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s is still referenced or references a missing row (%s)", model.ErrConflict, entity, pgErr.ConstraintName)
		}
	}
	return err
}

func expectAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s not found", model.ErrNotFound, entity)
	}
	return nil
}

func limitOffset(page Page) (int, int) {
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
