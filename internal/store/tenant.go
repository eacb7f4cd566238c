package store

import (
	"context"
	"fmt"

	"github.com/teresa-solution/rental-management-service/internal/model"
)

const tenantColumns = `id, user_id, phone, address_ciphertext, address_nonce, created_at`

func (r *queries) scanTenant(row interface{ Scan(...any) error }) (*model.Tenant, error) {
	tenant := &model.Tenant{}
	var ciphertext, nonce []byte
	if err := row.Scan(&tenant.ID, &tenant.UserID, &tenant.Phone, &ciphertext, &nonce, &tenant.CreatedAt); err != nil {
		return nil, err
	}

	// Decrypt address if sealed
	if len(ciphertext) > 0 && len(nonce) > 0 {
		if r.cipher == nil {
			return nil, fmt.Errorf("tenant %d: address is sealed but no cipher is configured", tenant.ID)
		}
		address, err := r.cipher.Decrypt(ciphertext, nonce)
		if err != nil {
			return nil, fmt.Errorf("tenant %d: decrypt address: %w", tenant.ID, err)
		}
		tenant.Address = address
	}
	return tenant, nil
}

func (r *queries) sealAddress(address string) ([]byte, []byte, error) {
	if address == "" {
		return nil, nil, nil
	}
	if r.cipher == nil {
		return nil, nil, fmt.Errorf("no cipher configured for tenant address")
	}
	return r.cipher.Encrypt(address)
}

func (r *queries) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	ciphertext, nonce, err := r.sealAddress(tenant.Address)
	if err != nil {
		return err
	}

	query := `INSERT INTO tenants (user_id, phone, address_ciphertext, address_nonce)
              VALUES ($1, $2, $3, $4)
              RETURNING id, created_at`
	err = r.q.QueryRowContext(ctx, query, tenant.UserID, tenant.Phone, ciphertext, nonce).
		Scan(&tenant.ID, &tenant.CreatedAt)
	return mapError(err, "tenant")
}

func (r *queries) GetTenant(ctx context.Context, id int64) (*model.Tenant, error) {
	return r.getTenantBy(ctx, "id", id)
}

func (r *queries) GetTenantByPhone(ctx context.Context, phone string) (*model.Tenant, error) {
	return r.getTenantBy(ctx, "phone", phone)
}

func (r *queries) GetTenantByUserID(ctx context.Context, userID int64) (*model.Tenant, error) {
	return r.getTenantBy(ctx, "user_id", userID)
}

func (r *queries) getTenantBy(ctx context.Context, column string, value any) (*model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE ` + column + ` = $1`
	tenant, err := r.scanTenant(r.q.QueryRowContext(ctx, query, value))
	if err != nil {
		return nil, mapError(err, "tenant")
	}
	return tenant, nil
}

func (r *queries) ListTenants(ctx context.Context, page Page) ([]model.Tenant, error) {
	limit, offset := limitOffset(page)
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		tenant, err := r.scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *tenant)
	}
	return tenants, rows.Err()
}

func (r *queries) UpdateTenant(ctx context.Context, tenant *model.Tenant) error {
	ciphertext, nonce, err := r.sealAddress(tenant.Address)
	if err != nil {
		return err
	}

	query := `UPDATE tenants SET user_id = $2, phone = $3, address_ciphertext = $4, address_nonce = $5
              WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, tenant.ID, tenant.UserID, tenant.Phone, ciphertext, nonce)
	if err != nil {
		return mapError(err, "tenant")
	}
	return expectAffected(res, "tenant")
}

func (r *queries) DeleteTenant(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "tenant")
	}
	return expectAffected(res, "tenant")
}
