package memory

import (
	"context"
	"strings"

	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

func (q *queries) CreateApartment(_ context.Context, apt *model.Apartment) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.users[apt.LandlordID]; !ok {
		return conflict("landlord %d does not exist", apt.LandlordID)
	}
	if apt.Status == "" {
		apt.Status = model.ApartmentAvailable
	}
	apt.ID = d.next("apartments")
	apt.CreatedAt = q.s.now()
	d.apartments[apt.ID] = *apt
	return nil
}

func (q *queries) GetApartment(_ context.Context, id int64) (*model.Apartment, error) {
	d, unlock := q.acquire()
	defer unlock()

	a, ok := d.apartments[id]
	if !ok {
		return nil, notFound("apartment")
	}
	return &a, nil
}

func (q *queries) ListApartments(_ context.Context, p store.Page) ([]model.Apartment, error) {
	d, unlock := q.acquire()
	defer unlock()
	return page(d.apartments, p, nil), nil
}

func (q *queries) UpdateApartment(_ context.Context, apt *model.Apartment) error {
	d, unlock := q.acquire()
	defer unlock()

	existing, ok := d.apartments[apt.ID]
	if !ok {
		return notFound("apartment")
	}
	existing.Name = apt.Name
	existing.Address = apt.Address
	existing.RentPrice = apt.RentPrice
	existing.Description = apt.Description
	existing.Status = apt.Status
	d.apartments[apt.ID] = existing
	return nil
}

func (q *queries) SetApartmentStatus(_ context.Context, id int64, status model.ApartmentStatus) error {
	d, unlock := q.acquire()
	defer unlock()

	a, ok := d.apartments[id]
	if !ok {
		return notFound("apartment")
	}
	a.Status = status
	d.apartments[id] = a
	return nil
}

func (q *queries) DeleteApartment(_ context.Context, id int64) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.apartments[id]; !ok {
		return notFound("apartment")
	}
	for _, r := range d.rentals {
		if r.ApartmentID == id {
			return conflict("apartment %d still has rentals", id)
		}
	}
	for _, m := range d.maintenance {
		if m.ApartmentID == id {
			return conflict("apartment %d still has maintenance requests", id)
		}
	}
	delete(d.apartments, id)
	return nil
}

func (q *queries) CountApartmentsByLandlord(_ context.Context, userID int64) (int, error) {
	d, unlock := q.acquire()
	defer unlock()
	return len(all(d.apartments, func(a model.Apartment) bool { return a.LandlordID == userID })), nil
}

func (d *dataset) checkTenant(t *model.Tenant) error {
	if _, ok := d.users[t.UserID]; !ok {
		return conflict("user %d does not exist", t.UserID)
	}
	for id, other := range d.tenants {
		if id == t.ID {
			continue
		}
		if other.Phone == t.Phone {
			return conflict("phone already exists")
		}
		if other.UserID == t.UserID {
			return conflict("user %d already has a tenant profile", t.UserID)
		}
	}
	return nil
}

func (q *queries) CreateTenant(_ context.Context, tenant *model.Tenant) error {
	d, unlock := q.acquire()
	defer unlock()

	tenant.ID = 0
	if err := d.checkTenant(tenant); err != nil {
		return err
	}
	tenant.ID = d.next("tenants")
	tenant.CreatedAt = q.s.now()
	d.tenants[tenant.ID] = *tenant
	return nil
}

func (q *queries) GetTenant(_ context.Context, id int64) (*model.Tenant, error) {
	d, unlock := q.acquire()
	defer unlock()

	t, ok := d.tenants[id]
	if !ok {
		return nil, notFound("tenant")
	}
	return &t, nil
}

func (q *queries) findTenant(match func(model.Tenant) bool) (*model.Tenant, error) {
	d, unlock := q.acquire()
	defer unlock()

	found := all(d.tenants, match)
	if len(found) == 0 {
		return nil, notFound("tenant")
	}
	return &found[0], nil
}

func (q *queries) GetTenantByPhone(_ context.Context, phone string) (*model.Tenant, error) {
	phone = strings.TrimSpace(phone)
	return q.findTenant(func(t model.Tenant) bool { return t.Phone == phone })
}

func (q *queries) GetTenantByUserID(_ context.Context, userID int64) (*model.Tenant, error) {
	return q.findTenant(func(t model.Tenant) bool { return t.UserID == userID })
}

func (q *queries) ListTenants(_ context.Context, p store.Page) ([]model.Tenant, error) {
	d, unlock := q.acquire()
	defer unlock()
	return page(d.tenants, p, nil), nil
}

func (q *queries) UpdateTenant(_ context.Context, tenant *model.Tenant) error {
	d, unlock := q.acquire()
	defer unlock()

	existing, ok := d.tenants[tenant.ID]
	if !ok {
		return notFound("tenant")
	}
	if err := d.checkTenant(tenant); err != nil {
		return err
	}
	stored := *tenant
	stored.CreatedAt = existing.CreatedAt
	d.tenants[tenant.ID] = stored
	return nil
}

func (q *queries) DeleteTenant(_ context.Context, id int64) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.tenants[id]; !ok {
		return notFound("tenant")
	}
	for _, r := range d.rentals {
		if r.TenantID == id {
			return conflict("tenant %d still has rentals", id)
		}
	}
	for _, m := range d.maintenance {
		if m.TenantID == id {
			return conflict("tenant %d still has maintenance requests", id)
		}
	}
	delete(d.tenants, id)
	return nil
}

func (d *dataset) checkMaintenance(m *model.MaintenanceRequest) error {
	if _, ok := d.apartments[m.ApartmentID]; !ok {
		return conflict("apartment %d does not exist", m.ApartmentID)
	}
	if _, ok := d.tenants[m.TenantID]; !ok {
		return conflict("tenant %d does not exist", m.TenantID)
	}
	return nil
}

func (q *queries) CreateMaintenanceRequest(_ context.Context, req *model.MaintenanceRequest) error {
	d, unlock := q.acquire()
	defer unlock()

	if err := d.checkMaintenance(req); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = model.MaintenancePending
	}
	req.ID = d.next("maintenance_requests")
	d.maintenance[req.ID] = *req
	return nil
}

func (q *queries) GetMaintenanceRequest(_ context.Context, id int64) (*model.MaintenanceRequest, error) {
	d, unlock := q.acquire()
	defer unlock()

	m, ok := d.maintenance[id]
	if !ok {
		return nil, notFound("maintenance request")
	}
	return &m, nil
}

func (q *queries) ListMaintenanceRequests(_ context.Context, p store.Page) ([]model.MaintenanceRequest, error) {
	d, unlock := q.acquire()
	defer unlock()
	return page(d.maintenance, p, nil), nil
}

func (q *queries) UpdateMaintenanceRequest(_ context.Context, req *model.MaintenanceRequest) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.maintenance[req.ID]; !ok {
		return notFound("maintenance request")
	}
	if err := d.checkMaintenance(req); err != nil {
		return err
	}
	d.maintenance[req.ID] = *req
	return nil
}

func (q *queries) DeleteMaintenanceRequest(_ context.Context, id int64) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.maintenance[id]; !ok {
		return notFound("maintenance request")
	}
	delete(d.maintenance, id)
	return nil
}

func (q *queries) deleteMaintenanceWhere(match func(model.MaintenanceRequest) bool) int64 {
	d, unlock := q.acquire()
	defer unlock()

	var n int64
	for id, m := range d.maintenance {
		if match(m) {
			delete(d.maintenance, id)
			n++
		}
	}
	return n
}

func (q *queries) DeleteMaintenanceByApartment(_ context.Context, apartmentID int64) (int64, error) {
	return q.deleteMaintenanceWhere(func(m model.MaintenanceRequest) bool { return m.ApartmentID == apartmentID }), nil
}

func (q *queries) DeleteMaintenanceByTenant(_ context.Context, tenantID int64) (int64, error) {
	return q.deleteMaintenanceWhere(func(m model.MaintenanceRequest) bool { return m.TenantID == tenantID }), nil
}
