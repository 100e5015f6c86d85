package routes

import (
	"time"

	"github.com/fretline/buildtrack-api/internal/config"
	domainRepo "github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/internal/presentation/http/handler"
	"github.com/fretline/buildtrack-api/internal/presentation/http/middleware"
	"github.com/fretline/buildtrack-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Factory    *handler.FactoryHandler
	Run        *handler.RunHandler
	Guitar     *handler.GuitarHandler
	Note       *handler.NoteHandler
	Client     *handler.ClientHandler
	Invoice    *handler.InvoiceHandler
	CustomShop *handler.CustomShopHandler
	Settings   *handler.SettingsHandler
	Dashboard  *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *logrus.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Custom shop enquiries come straight off the public website
		v1.POST("/custom-shop", h.CustomShop.Submit)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		// Mutating requests may carry an Idempotency-Key header
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}))

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		auth.POST("/accept-invite", h.Auth.AcceptInvite)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.User.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Dashboard
	registerDashboardRoutes(protected, h)

	// Runs
	registerRunRoutes(protected, h)

	// Guitars
	registerGuitarRoutes(protected, h)

	// Clients
	registerClientRoutes(protected, h)

	// Invoices
	registerInvoiceRoutes(protected, h)

	// Custom shop
	registerCustomShopRoutes(protected, h)

	// Client portal
	registerPortalRoutes(protected, h)

	// Factories (Admin)
	registerFactoryRoutes(protected, h)

	// Users (Admin)
	registerUserRoutes(protected, h)

	// Settings (Admin)
	registerSettingsRoutes(protected, h)
}

func registerDashboardRoutes(protected *gin.RouterGroup, h *Handlers) {
	dashboard := protected.Group("/dashboard")
	dashboard.Use(middleware.RequirePermission("view-dashboard"))
	{
		dashboard.GET("", h.Dashboard.GetOverview)
	}
}

func registerRunRoutes(protected *gin.RouterGroup, h *Handlers) {
	runs := protected.Group("/runs")
	runs.Use(middleware.RequirePermission("manage-runs"))
	{
		runs.GET("", h.Run.List)
		runs.POST("", h.Run.Create)
		runs.GET("/:id", h.Run.Get)
		runs.PUT("/:id", h.Run.Update)
		runs.POST("/:id/archive", h.Run.Archive)
		runs.GET("/:id/export", h.Run.Export)
		runs.GET("/:id/distribution", h.Dashboard.GetStageDistribution)
		runs.POST("/:id/stages", h.Run.AddStage)
		runs.PUT("/:id/stages/:stageId", h.Run.UpdateStage)
		runs.DELETE("/:id/stages/:stageId", h.Run.DeleteStage)
		runs.PUT("/:id/stages/reorder", h.Run.ReorderStages)
		runs.POST("/:id/updates", h.Run.PostUpdate)
		runs.GET("/:id/updates", h.Run.ListUpdates)
	}
}

func registerGuitarRoutes(protected *gin.RouterGroup, h *Handlers) {
	guitars := protected.Group("/guitars")
	guitars.Use(middleware.RequirePermission("manage-guitars"))
	{
		guitars.GET("", h.Guitar.List)
		guitars.POST("", h.Guitar.Create)
		guitars.GET("/:id", h.Guitar.Get)
		guitars.PUT("/:id", h.Guitar.Update)
		guitars.POST("/:id/archive", h.Guitar.Archive)
		guitars.GET("/:id/transitions", h.Guitar.Transitions)

		guitars.POST("/:id/advance", middleware.RequirePermission("advance-stages"), h.Guitar.Advance)

		guitars.GET("/:id/notes", h.Note.List)
		guitars.POST("/:id/notes", middleware.RequirePermission("manage-notes"), h.Note.Create)

		photos := guitars.Group("", middleware.RequirePermission("manage-photos"))
		{
			photos.POST("/:id/notes/:noteId/photos", h.Note.UploadPhoto)
			photos.POST("/:id/notes/:noteId/photos/external", h.Note.AttachExternalPhoto)
			photos.DELETE("/:id/photos/:photoId", h.Note.DeletePhoto)
			photos.PUT("/:id/cover/:photoId", h.Note.SetCoverPhoto)
		}
	}
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	clients.Use(middleware.RequirePermission("manage-clients"))
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
		clients.POST("/:id/invite", h.Client.Invite)
		clients.POST("/:id/runs/:runId", h.Client.AssignRun)
		clients.DELETE("/:id/runs/:runId", h.Client.RemoveRun)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers) {
	invoices := protected.Group("/invoices")
	invoices.Use(middleware.RequirePermission("manage-invoices"))
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.POST("/:id/void", h.Invoice.Void)

		invoices.POST("/:id/payments", middleware.RequirePermission("record-payments"), h.Invoice.RecordPayment)
	}
}

func registerCustomShopRoutes(protected *gin.RouterGroup, h *Handlers) {
	requests := protected.Group("/custom-shop")
	requests.Use(middleware.RequirePermission("manage-custom-shop"))
	{
		requests.GET("", h.CustomShop.List)
		requests.GET("/:id", h.CustomShop.Get)
		requests.PUT("/:id/status", h.CustomShop.UpdateStatus)
	}
}

func registerPortalRoutes(protected *gin.RouterGroup, h *Handlers) {
	portal := protected.Group("/my")
	portal.Use(middleware.RequirePermission("view-client-portal"))
	{
		portal.GET("/builds", h.Client.MyBuilds)
		portal.GET("/builds/:id", h.Client.MyBuild)
		portal.GET("/invoices", h.Client.MyInvoices)
	}
}

func registerFactoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	factories := protected.Group("/factories")
	factories.Use(middleware.RequirePermission("manage-runs"))
	{
		factories.GET("", h.Factory.List)
		factories.POST("", h.Factory.Create)
		factories.GET("/:id", h.Factory.Get)
		factories.PUT("/:id", h.Factory.Update)
		factories.DELETE("/:id", h.Factory.Delete)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequirePermission("manage-users"))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.PUT("/:id/roles", h.User.SetRoles)
		users.POST("/:id/resend-invite", h.User.ResendInvite)
		users.DELETE("/:id", h.User.Delete)
	}

	roles := protected.Group("/roles")
	roles.Use(middleware.RequirePermission("manage-users"))
	{
		roles.GET("", h.User.ListRoles)
	}
}

func registerSettingsRoutes(protected *gin.RouterGroup, h *Handlers) {
	settings := protected.Group("/settings")
	{
		// Staff may verify delivery without holding settings rights
		settings.POST("/test-email", middleware.RequirePermission("send-test-email"), h.Settings.SendTestEmail)

		admin := settings.Group("", middleware.RequirePermission("manage-settings"))
		{
			admin.GET("", h.Settings.Get)
			admin.PUT("", h.Settings.Update)
			admin.GET("/emails", h.Settings.ListEmailLog)
		}
	}
}
