package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/internal/middleware"
	"github.com/noah-isme/salon-booking-api/internal/models"
	"github.com/noah-isme/salon-booking-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/salon-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/salon-booking-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth         *AuthHandler
	Users        *UserHandler
	Appointments *AppointmentHandler
	Inquiries    *InquiryHandler
	Providers    *ProviderHandler
	Catalog      *CatalogHandler
	WorkingHours *WorkingHoursHandler
	Ops          *MetricsHandler
}

// RouterConfig carries the cross-cutting dependencies of the router.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	// UploadsDir is served under UploadsPath when photos live on local disk.
	UploadsDir  string
	UploadsPath string

	Tokens   middleware.TokenValidator
	Audit    middleware.AuditWriter
	Requests middleware.RequestObserver
	Limiter  *middleware.RateLimiter
	Logger   *zap.Logger
}

// NewRouter builds the gin engine with every booking API route.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Requests))

	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.UploadsDir != "" && cfg.UploadsPath != "" {
		r.Static(cfg.UploadsPath, cfg.UploadsDir)
	}

	limit := func(scope string) gin.HandlerFunc {
		if cfg.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return cfg.Limiter.Limit(scope)
	}
	auth := middleware.JWT(cfg.Tokens)
	roles := middleware.RequireRoles
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(cfg.Audit, cfg.Logger, action, resource)
	}

	api := r.Group(cfg.APIPrefix)

	// Public surface.
	api.POST("/login", limit("login"), h.Auth.Login)
	api.POST("/auth/refresh", limit("refresh"), h.Auth.Refresh)
	api.POST("/clients", limit("register"), h.Users.RegisterClient)
	api.POST("/inquiries", limit("inquiry"), h.Inquiries.Register)
	api.GET("/appointments/available_slots/:staff_id/:service_id/:date", h.Appointments.AvailableSlots)
	api.GET("/categories/profile", h.Catalog.ListCategories)
	api.GET("/categories/profile/:id", h.Catalog.GetCategory)
	api.GET("/subcategories/profile", h.Catalog.ListSubcategories)
	api.GET("/subcategories/profile/:id", h.Catalog.GetSubcategory)
	api.GET("/services/profile", h.Catalog.ListServices)
	api.GET("/services/profile/:id", h.Catalog.GetService)

	secured := api.Group("")
	secured.Use(auth)

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.POST("/change-password", h.Auth.ChangePassword)

	clients := secured.Group("/clients/profile", roles(models.RoleClient))
	clients.GET("", h.Users.Profile)
	clients.PUT("/edit", h.Users.EditProfile)
	clients.PUT("/deactivate", h.Users.DeactivateProfile)

	backOffice := []models.UserRole{models.RoleAdmin, models.RoleApprover, models.RoleOwner, models.RoleStaff}
	users := secured.Group("/users", roles(backOffice...))
	users.POST("", roles(models.RoleAdmin, models.RoleApprover, models.RoleOwner), h.Users.Create)
	users.GET("", h.Users.List)
	users.GET("/profile", h.Users.Profile)
	users.GET("/profile/:user_id", h.Users.Get)
	users.PUT("/:user_id/edit", h.Users.Update)
	users.PUT("/:user_id/deactivate", h.Users.Deactivate)

	appointments := secured.Group("/appointments")
	appointments.GET("/info", roles(models.RoleClient, models.RoleStaff), h.Appointments.Info)
	appointments.GET("/agenda", roles(models.RoleStaff), h.Appointments.Agenda)
	appointments.POST("", roles(models.RoleClient), h.Appointments.Create)
	appointments.PUT("/:id/edit", roles(models.RoleClient), h.Appointments.Edit)
	appointments.DELETE("/:id", roles(models.RoleClient), h.Appointments.Delete)
	staffOnly := appointments.Group("/:id", roles(models.RoleStaff))
	staffOnly.PUT("/confirm", h.Appointments.Confirm)
	staffOnly.PUT("/reject", h.Appointments.Reject)
	staffOnly.PUT("/cancel", h.Appointments.Cancel)
	staffOnly.PUT("/no_show", h.Appointments.NoShow)
	staffOnly.PUT("/complete", h.Appointments.Complete)

	approver := secured.Group("/approver/inquiries", roles(models.RoleApprover, models.RoleAdmin))
	approver.GET("", h.Inquiries.List)
	approver.GET("/:status", h.Inquiries.List)
	approver.PUT("/:id/approval", h.Inquiries.Approve)
	approver.PUT("/:id/rejection", h.Inquiries.Reject)
	approver.PUT("/:id/no-show", h.Inquiries.NoShow)

	secured.POST("/provider", roles(models.RoleApprover, models.RoleAdmin), h.Providers.Create)
	secured.PUT("/provider/:id/edit", roles(models.RoleAdmin, models.RoleOwner), h.Providers.Update)
	secured.PUT("/provider/:id/deactivate", roles(models.RoleAdmin), h.Providers.Deactivate)
	providers := secured.Group("/providers/profile", roles(backOffice...))
	providers.GET("", h.Providers.List)
	providers.GET("/:id", h.Providers.Get)

	catalogAdmin := secured.Group("", roles(models.RoleAdmin), audit(models.AuditActionCatalogChange, "catalog"))
	catalogAdmin.POST("/categories", h.Catalog.CreateCategory)
	catalogAdmin.PUT("/categories/:id/edit", h.Catalog.UpdateCategory)
	catalogAdmin.PUT("/categories/:id/deactivate", h.Catalog.DeactivateCategory)
	catalogAdmin.POST("/subcategories", h.Catalog.CreateSubcategory)
	catalogAdmin.PUT("/subcategories/:id/edit", h.Catalog.UpdateSubcategory)
	catalogAdmin.PUT("/subcategories/:id/deactivate", h.Catalog.DeactivateSubcategory)

	ownerOps := secured.Group("", roles(models.RoleAdmin, models.RoleOwner))
	services := ownerOps.Group("/services", audit(models.AuditActionCatalogChange, "services"))
	services.POST("", h.Catalog.CreateService)
	services.PUT("/:id/edit", h.Catalog.UpdateService)
	services.PUT("/:id/deactivate", h.Catalog.DeactivateService)

	hours := ownerOps.Group("/working_hours", audit(models.AuditActionHoursChange, "working_hours"))
	hours.POST("/register", h.WorkingHours.Register)
	hours.PUT("/:id/edit", h.WorkingHours.Update)
	hours.PUT("/:id/deactivate", h.WorkingHours.Deactivate)
	secured.GET("/working_hours/profile", roles(backOffice...), h.WorkingHours.List)

	return r
}
