package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/service"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

type roleRequest struct {
	Name string `json:"name"`
}

func (h *handler) login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		respondError(c, fmt.Errorf("%w: username and password are required", model.ErrValidation))
		return
	}

	res, err := h.svc.Auth.Login(c.Request.Context(), username, password)
	if errors.Is(err, model.ErrUnauthenticated) {
		abortUnauthenticated(c, detailInvalidCredentials)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) signup(c *gin.Context) {
	var in service.SignupInput
	if err := bind(c, &in); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.svc.Auth.Signup(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, principal(c))
}

// get answers a lookup by path id.
func get[T any](c *gin.Context, fetch func(ctx context.Context, id int64) (T, error)) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	v, err := fetch(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// list answers a paged listing.
func list[T any](c *gin.Context, def int, fetch func(ctx context.Context, page store.Page) ([]T, error)) {
	page, err := pageOf(c, def)
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := fetch(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

// create binds the body and answers 201 with the created entity.
func create[In, Out any](c *gin.Context, do func(ctx context.Context, p *auth.Principal, in In) (Out, error)) {
	var in In
	if err := bind(c, &in); err != nil {
		respondError(c, err)
		return
	}
	out, err := do(c.Request.Context(), principal(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// update binds the body and applies it to the entity at the path id.
func update[In, Out any](c *gin.Context, do func(ctx context.Context, p *auth.Principal, id int64, in In) (Out, error)) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in In
	if err := bind(c, &in); err != nil {
		respondError(c, err)
		return
	}
	out, err := do(c.Request.Context(), principal(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// remove deletes the entity at the path id and answers 204.
func remove(c *gin.Context, do func(ctx context.Context, p *auth.Principal, id int64) error) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := do(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listRoles(c *gin.Context) {
	roles, err := h.svc.Roles.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

func (h *handler) createRole(c *gin.Context) {
	create(c, func(ctx context.Context, p *auth.Principal, in roleRequest) (*model.Role, error) {
		return h.svc.Roles.Create(ctx, p, in.Name)
	})
}

func (h *handler) updateRole(c *gin.Context) {
	update(c, func(ctx context.Context, p *auth.Principal, id int64, in roleRequest) (*model.Role, error) {
		return h.svc.Roles.Update(ctx, p, id, in.Name)
	})
}

func (h *handler) deleteRole(c *gin.Context) { remove(c, h.svc.Roles.Delete) }

func (h *handler) createUser(c *gin.Context) { create(c, h.svc.Users.Create) }
func (h *handler) listUsers(c *gin.Context)  { list(c, 100, h.svc.Users.List) }
func (h *handler) getUser(c *gin.Context)    { get(c, h.svc.Users.Get) }
func (h *handler) updateUser(c *gin.Context) { update(c, h.svc.Users.Update) }
func (h *handler) deleteUser(c *gin.Context) { remove(c, h.svc.Users.Delete) }

func (h *handler) createApartment(c *gin.Context) { create(c, h.svc.Apartments.Create) }
func (h *handler) listApartments(c *gin.Context)  { list(c, defaultLimit, h.svc.Apartments.List) }
func (h *handler) getApartment(c *gin.Context)    { get(c, h.svc.Apartments.Get) }
func (h *handler) updateApartment(c *gin.Context) { update(c, h.svc.Apartments.Update) }
func (h *handler) deleteApartment(c *gin.Context) { remove(c, h.svc.Apartments.Delete) }

func (h *handler) createTenant(c *gin.Context) { create(c, h.svc.Tenants.Create) }
func (h *handler) listTenants(c *gin.Context)  { list(c, defaultLimit, h.svc.Tenants.List) }
func (h *handler) getTenant(c *gin.Context)    { get(c, h.svc.Tenants.Get) }
func (h *handler) updateTenant(c *gin.Context) { update(c, h.svc.Tenants.Update) }
func (h *handler) deleteTenant(c *gin.Context) { remove(c, h.svc.Tenants.Delete) }

func (h *handler) createRental(c *gin.Context)     { create(c, h.svc.Rentals.Create) }
func (h *handler) listRentals(c *gin.Context)      { list(c, defaultLimit, h.svc.Rentals.List) }
func (h *handler) getRental(c *gin.Context)        { get(c, h.svc.Rentals.Get) }
func (h *handler) listRentalEvents(c *gin.Context) { get(c, h.svc.Rentals.ListEvents) }
func (h *handler) updateRental(c *gin.Context)     { update(c, h.svc.Rentals.Update) }
func (h *handler) deleteRental(c *gin.Context)     { remove(c, h.svc.Rentals.Delete) }

func (h *handler) createPayment(c *gin.Context) { create(c, h.svc.Payments.Create) }
func (h *handler) listPayments(c *gin.Context)  { list(c, defaultLimit, h.svc.Payments.List) }
func (h *handler) getPayment(c *gin.Context)    { get(c, h.svc.Payments.Get) }
func (h *handler) updatePayment(c *gin.Context) { update(c, h.svc.Payments.Update) }
func (h *handler) deletePayment(c *gin.Context) { remove(c, h.svc.Payments.Delete) }

func (h *handler) createMaintenance(c *gin.Context) { create(c, h.svc.Maintenance.Create) }
func (h *handler) listMaintenance(c *gin.Context)   { list(c, defaultLimit, h.svc.Maintenance.List) }
func (h *handler) getMaintenance(c *gin.Context)    { get(c, h.svc.Maintenance.Get) }
func (h *handler) updateMaintenance(c *gin.Context) { update(c, h.svc.Maintenance.Update) }
func (h *handler) deleteMaintenance(c *gin.Context) { remove(c, h.svc.Maintenance.Delete) }
