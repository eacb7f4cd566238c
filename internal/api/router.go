// Package api exposes the services over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/teresa-solution/rental-management-service/internal/auth"
	"github.com/teresa-solution/rental-management-service/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	Services       *service.Services
	Guard          *auth.Guard
	Health         Pinger
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

type handler struct {
	svc    *service.Services
	health Pinger
}

// NewRouter builds the HTTP API.
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestContext(), metrics())

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", headerRequestID},
			ExposeHeaders:    []string{"Content-Length", headerRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		r.Use(rateLimit(newClientLimiter(rate.Limit(opts.RateLimit), burst)))
	}

	h := &handler{svc: opts.Services, health: opts.Health}
	authed := authenticate(opts.Guard)

	r.GET("/", h.root)
	r.GET("/health", h.healthCheck)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.POST("/signup", h.signup)
		authGroup.GET("/me", authed, h.me)
	}

	users := r.Group("/users", authed)
	{
		users.GET("/roles", h.listRoles)
		users.POST("/roles", h.createRole)
		users.PUT("/roles/:id", h.updateRole)
		users.DELETE("/roles/:id", h.deleteRole)

		users.POST("", h.createUser)
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}

	apartments := r.Group("/apartments", authed)
	{
		apartments.POST("", h.createApartment)
		apartments.GET("", h.listApartments)
		apartments.GET("/:id", h.getApartment)
		apartments.PUT("/:id", h.updateApartment)
		apartments.DELETE("/:id", h.deleteApartment)
	}

	tenants := r.Group("/tenants", authed)
	{
		tenants.POST("", h.createTenant)
		tenants.GET("", h.listTenants)
		tenants.GET("/:id", h.getTenant)
		tenants.PUT("/:id", h.updateTenant)
		tenants.DELETE("/:id", h.deleteTenant)
	}

	rentals := r.Group("/rentals", authed)
	{
		rentals.POST("", h.createRental)
		rentals.GET("", h.listRentals)
		rentals.GET("/:id", h.getRental)
		rentals.GET("/:id/events", h.listRentalEvents)
		rentals.PUT("/:id", h.updateRental)
		rentals.DELETE("/:id", h.deleteRental)
	}

	payments := r.Group("/payments", authed)
	{
		payments.POST("", h.createPayment)
		payments.GET("", h.listPayments)
		payments.GET("/:id", h.getPayment)
		payments.PUT("/:id", h.updatePayment)
		payments.DELETE("/:id", h.deletePayment)
	}

	maintenance := r.Group("/maintenance", authed)
	{
		maintenance.POST("", h.createMaintenance)
		maintenance.GET("", h.listMaintenance)
		maintenance.GET("/:id", h.getMaintenance)
		maintenance.PUT("/:id", h.updateMaintenance)
		maintenance.DELETE("/:id", h.deleteMaintenance)
	}

	return r
}

func (h *handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Rental management API"})
}

func (h *handler) healthCheck(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
