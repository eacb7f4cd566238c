package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

// PaymentInput carries a payment. Updates replace every field.
type PaymentInput struct {
	RentalID    int64               `json:"rental_id"`
	PaymentDate model.Date          `json:"payment_date"`
	Amount      float64             `json:"amount"`
	Method      model.PaymentMethod `json:"payment_method"`
	Status      model.PaymentStatus `json:"status"`
}

type PaymentService struct {
	store store.Store
}

func NewPaymentService(st store.Store) *PaymentService {
	return &PaymentService{store: st}
}

func (in PaymentInput) payment(id int64) (*model.Payment, error) {
	if in.Amount <= 0 {
		return nil, invalid("amount must be positive")
	}
	if !in.Method.Valid() {
		return nil, invalid("unknown payment method %q", in.Method)
	}
	status := in.Status
	if status == "" {
		status = model.PaymentPending
	}
	if !status.Valid() {
		return nil, invalid("unknown payment status %q", in.Status)
	}
	date := in.PaymentDate
	if date.IsZero() {
		date = today()
	}
	return &model.Payment{
		ID:          id,
		RentalID:    in.RentalID,
		PaymentDate: date,
		Amount:      in.Amount,
		Method:      in.Method,
		Status:      status,
	}, nil
}

// authorizeRental checks that p manages the apartment of rentalID.
func authorizeRental(ctx context.Context, q store.Queries, p *auth.Principal, rentalID int64) error {
	rental, err := q.GetRental(ctx, rentalID)
	if err != nil {
		return err
	}
	_, err = authorizeApartment(ctx, q, p, rental.ApartmentID)
	return err
}

func (s *PaymentService) Create(ctx context.Context, p *auth.Principal, in PaymentInput) (*model.Payment, error) {
	payment, err := in.payment(0)
	if err != nil {
		return nil, err
	}
	err = s.store.InTx(ctx, func(q store.Queries) error {
		if err := authorizeRental(ctx, q, p, in.RentalID); err != nil {
			return err
		}
		return q.CreatePayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int64("payment_id", payment.ID).Int64("rental_id", payment.RentalID).Msg("Payment recorded")
	return payment, nil
}

func (s *PaymentService) Get(ctx context.Context, id int64) (*model.Payment, error) {
	return s.store.GetPayment(ctx, id)
}

func (s *PaymentService) List(ctx context.Context, page store.Page) ([]model.Payment, error) {
	return s.store.ListPayments(ctx, page)
}

func (s *PaymentService) Update(ctx context.Context, p *auth.Principal, id int64, in PaymentInput) (*model.Payment, error) {
	payment, err := in.payment(id)
	if err != nil {
		return nil, err
	}
	err = s.store.InTx(ctx, func(q store.Queries) error {
		existing, err := q.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeRental(ctx, q, p, existing.RentalID); err != nil {
			return err
		}
		if existing.RentalID != in.RentalID {
			if err := authorizeRental(ctx, q, p, in.RentalID); err != nil {
				return err
			}
		}
		return q.UpdatePayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	return s.store.InTx(ctx, func(q store.Queries) error {
		existing, err := q.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeRental(ctx, q, p, existing.RentalID); err != nil {
			return err
		}
		return q.DeletePayment(ctx, id)
	})
}

// MaintenanceInput carries a maintenance request. Updates replace every field.
type MaintenanceInput struct {
	ApartmentID int64                   `json:"apartment_id"`
	TenantID    int64                   `json:"tenant_id"`
	Description string                  `json:"description"`
	RequestDate model.Date              `json:"request_date"`
	Status      model.MaintenanceStatus `json:"status"`
}

// MaintenanceService manages maintenance requests. Requests never change the
// apartment status.
type MaintenanceService struct {
	store store.Store
}

func NewMaintenanceService(st store.Store) *MaintenanceService {
	return &MaintenanceService{store: st}
}

func (in MaintenanceInput) request(id int64) (*model.MaintenanceRequest, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("description is required")
	}
	status := in.Status
	if status == "" {
		status = model.MaintenancePending
	}
	if !status.Valid() {
		return nil, invalid("unknown maintenance status %q", in.Status)
	}
	date := in.RequestDate
	if date.IsZero() {
		date = today()
	}
	return &model.MaintenanceRequest{
		ID:          id,
		ApartmentID: in.ApartmentID,
		TenantID:    in.TenantID,
		Description: strings.TrimSpace(in.Description),
		RequestDate: date,
		Status:      status,
	}, nil
}

// authorizeMaintenance lets admins, the apartment's landlord and the
// tenant's own user act on a request.
func authorizeMaintenance(ctx context.Context, q store.Queries, p *auth.Principal, apartmentID, tenantID int64) error {
	apt, err := q.GetApartment(ctx, apartmentID)
	if err != nil {
		return err
	}
	tenant, err := q.GetTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if auth.RequireOwnerOrAdmin(p, apt.LandlordID) == nil {
		return nil
	}
	return auth.RequireOwnerOrAdmin(p, tenant.UserID)
}

func (s *MaintenanceService) Create(ctx context.Context, p *auth.Principal, in MaintenanceInput) (*model.MaintenanceRequest, error) {
	req, err := in.request(0)
	if err != nil {
		return nil, err
	}
	err = s.store.InTx(ctx, func(q store.Queries) error {
		if err := authorizeMaintenance(ctx, q, p, in.ApartmentID, in.TenantID); err != nil {
			return err
		}
		return q.CreateMaintenanceRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int64("request_id", req.ID).Int64("apartment_id", req.ApartmentID).Msg("Maintenance request opened")
	return req, nil
}

func (s *MaintenanceService) Get(ctx context.Context, id int64) (*model.MaintenanceRequest, error) {
	return s.store.GetMaintenanceRequest(ctx, id)
}

func (s *MaintenanceService) List(ctx context.Context, page store.Page) ([]model.MaintenanceRequest, error) {
	return s.store.ListMaintenanceRequests(ctx, page)
}

func (s *MaintenanceService) Update(ctx context.Context, p *auth.Principal, id int64, in MaintenanceInput) (*model.MaintenanceRequest, error) {
	req, err := in.request(id)
	if err != nil {
		return nil, err
	}
	err = s.store.InTx(ctx, func(q store.Queries) error {
		existing, err := q.GetMaintenanceRequest(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeMaintenance(ctx, q, p, existing.ApartmentID, existing.TenantID); err != nil {
			return err
		}
		if err := authorizeMaintenance(ctx, q, p, in.ApartmentID, in.TenantID); err != nil {
			return err
		}
		return q.UpdateMaintenanceRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *MaintenanceService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	return s.store.InTx(ctx, func(q store.Queries) error {
		existing, err := q.GetMaintenanceRequest(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeMaintenance(ctx, q, p, existing.ApartmentID, existing.TenantID); err != nil {
			return err
		}
		return q.DeleteMaintenanceRequest(ctx, id)
	})
}

func today() model.Date {
	y, m, d := time.Now().UTC().Date()
	return model.NewDate(y, m, d)
}
