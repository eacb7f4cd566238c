package model

import "time"

// ApartmentStatus is the availability of an apartment.
type ApartmentStatus string

const (
	ApartmentAvailable   ApartmentStatus = "available"
	ApartmentRented      ApartmentStatus = "rented"
	ApartmentMaintenance ApartmentStatus = "maintenance"
)

func (s ApartmentStatus) Valid() bool {
	switch s {
	case ApartmentAvailable, ApartmentRented, ApartmentMaintenance:
		return true
	}
	return false
}

// Apartment represents the apartments table
type Apartment struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	RentPrice   float64         `json:"rent_price"`
	Description string          `json:"description,omitempty"`
	Status      ApartmentStatus `json:"status"`
	LandlordID  int64           `json:"landlord_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Tenant represents the tenants table
type Tenant struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"` // sealed at rest
	CreatedAt time.Time `json:"created_at"`
}

// MaintenanceStatus is the progress of a maintenance request.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "pending"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
)

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}

// MaintenanceRequest represents the maintenance_requests table
type MaintenanceRequest struct {
	ID          int64             `json:"id"`
	ApartmentID int64             `json:"apartment_id"`
	TenantID    int64             `json:"tenant_id"`
	Description string            `json:"description"`
	RequestDate Date              `json:"request_date"`
	Status      MaintenanceStatus `json:"status"`
}
