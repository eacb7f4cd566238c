// Package service holds the business operations behind the HTTP API: the
// rental lifecycle, authentication and the entity services. Every write
// takes the caller's principal and enforces its authorization rule.
package service

import (
	"fmt"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/crypto"
	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

// Services bundles every service over one store.
type Services struct {
	Auth        *AuthService
	Users       *UserService
	Roles       *RoleService
	Apartments  *ApartmentService
	Tenants     *TenantService
	Rentals     *RentalManager
	Payments    *PaymentService
	Maintenance *MaintenanceService
}

// New wires the services. throttle may be nil.
func New(st store.Store, hasher *crypto.PasswordHasher, tokens *auth.TokenService, throttle *auth.LoginThrottle) *Services {
	return &Services{
		Auth:        NewAuthService(st, hasher, tokens, throttle),
		Users:       NewUserService(st, hasher),
		Roles:       NewRoleService(st),
		Apartments:  NewApartmentService(st),
		Tenants:     NewTenantService(st),
		Rentals:     NewRentalManager(st),
		Payments:    NewPaymentService(st),
		Maintenance: NewMaintenanceService(st),
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrValidation}, args...)...)
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrConflict}, args...)...)
}
