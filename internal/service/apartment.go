package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

// ApartmentInput carries a new apartment. The landlord is always the caller.
type ApartmentInput struct {
	Name        string                `json:"name"`
	Address     string                `json:"address"`
	RentPrice   float64               `json:"rent_price"`
	Description string                `json:"description"`
	Status      model.ApartmentStatus `json:"status"`
}

// ApartmentUpdate changes the set fields of an apartment.
type ApartmentUpdate struct {
	Name        *string                `json:"name"`
	Address     *string                `json:"address"`
	RentPrice   *float64               `json:"rent_price"`
	Description *string                `json:"description"`
	Status      *model.ApartmentStatus `json:"status"`
}

type ApartmentService struct {
	store store.Store
}

func NewApartmentService(st store.Store) *ApartmentService {
	return &ApartmentService{store: st}
}

func validateApartment(a *model.Apartment) error {
	if strings.TrimSpace(a.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(a.Address) == "" {
		return invalid("address is required")
	}
	if a.RentPrice < 0 {
		return invalid("rent_price must not be negative")
	}
	if !a.Status.Valid() {
		return invalid("unknown apartment status %q", a.Status)
	}
	return nil
}

// Create lists a new apartment owned by the calling landlord.
func (s *ApartmentService) Create(ctx context.Context, p *auth.Principal, in ApartmentInput) (*model.Apartment, error) {
	if err := auth.RequireRole(p, model.RoleLandlord); err != nil {
		return nil, err
	}
	apt := &model.Apartment{
		Name:        strings.TrimSpace(in.Name),
		Address:     strings.TrimSpace(in.Address),
		RentPrice:   in.RentPrice,
		Description: in.Description,
		Status:      in.Status,
		LandlordID:  p.UserID,
	}
	if apt.Status == "" {
		apt.Status = model.ApartmentAvailable
	}
	if err := validateApartment(apt); err != nil {
		return nil, err
	}
	if err := s.store.CreateApartment(ctx, apt); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int64("apartment_id", apt.ID).Int64("landlord_id", apt.LandlordID).Msg("Apartment created")
	return apt, nil
}

func (s *ApartmentService) Get(ctx context.Context, id int64) (*model.Apartment, error) {
	return s.store.GetApartment(ctx, id)
}

func (s *ApartmentService) List(ctx context.Context, page store.Page) ([]model.Apartment, error) {
	return s.store.ListApartments(ctx, page)
}

// Update edits an apartment owned by the caller, or any apartment for an admin.
func (s *ApartmentService) Update(ctx context.Context, p *auth.Principal, id int64, upd ApartmentUpdate) (*model.Apartment, error) {
	var apt *model.Apartment
	err := s.store.InTx(ctx, func(q store.Queries) error {
		var err error
		if apt, err = authorizeApartment(ctx, q, p, id); err != nil {
			return err
		}
		if upd.Name != nil {
			apt.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Address != nil {
			apt.Address = strings.TrimSpace(*upd.Address)
		}
		if upd.RentPrice != nil {
			apt.RentPrice = *upd.RentPrice
		}
		if upd.Description != nil {
			apt.Description = *upd.Description
		}
		if upd.Status != nil {
			apt.Status = *upd.Status
		}
		if err := validateApartment(apt); err != nil {
			return err
		}
		return q.UpdateApartment(ctx, apt)
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int64("apartment_id", id).Msg("Apartment updated")
	return apt, nil
}

// Delete removes an apartment together with its rentals, their payments and
// its maintenance requests.
func (s *ApartmentService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	var removed int
	err := s.store.InTx(ctx, func(q store.Queries) error {
		if _, err := authorizeApartment(ctx, q, p, id); err != nil {
			return err
		}
		rentals, err := q.ListRentalsByApartment(ctx, id)
		if err != nil {
			return err
		}
		for i := range rentals {
			if _, err := removeRental(ctx, q, &rentals[i], false); err != nil {
				return err
			}
		}
		removed = len(rentals)
		if _, err := q.DeleteMaintenanceByApartment(ctx, id); err != nil {
			return err
		}
		return q.DeleteApartment(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Int64("apartment_id", id).Int("rentals_removed", removed).Msg("Apartment deleted")
	return nil
}
