package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/josemp10/ventas-api/internal/config"
	"github.com/josemp10/ventas-api/internal/presentation/http/handler"
	"github.com/josemp10/ventas-api/internal/presentation/http/middleware"
	"github.com/josemp10/ventas-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Client    *handler.ClientHandler
	Category  *handler.CategoryHandler
	Product   *handler.ProductHandler
	Sale      *handler.SaleHandler
	Forecast  *handler.ForecastHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
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
		registerPublicRoutes(v1, h)

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

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerPublicRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}

	// Public storefront catalog
	public := v1.Group("/public")
	{
		public.GET("/categories", h.Category.ListActive)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	// Profile routes
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Clients
	registerClientRoutes(protected, h)

	// Categories
	registerCategoryRoutes(protected, h)

	// Products
	registerProductRoutes(protected, h)

	// Sales
	registerSaleRoutes(protected, h)

	// Forecasting
	registerForecastRoutes(protected, h)

	// Dashboard
	registerDashboardRoutes(protected, h)
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
	}
}

func registerCategoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	categories := protected.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.POST("", h.Category.Create)
		categories.GET("/:id", h.Category.Get)
		categories.PUT("/:id", h.Category.Update)
		categories.DELETE("/:id", h.Category.Delete)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/low-stock", h.Product.LowStock)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers) {
	sales := protected.Group("/sales")
	{
		sales.GET("", h.Sale.List)
		sales.POST("", h.Sale.Create)
		sales.GET("/:id", h.Sale.Get)
		sales.PATCH("/:id/complete", h.Sale.Complete)
		sales.PATCH("/:id/cancel", h.Sale.Cancel)
	}
}

func registerForecastRoutes(protected *gin.RouterGroup, h *Handlers) {
	forecast := protected.Group("/forecast")
	{
		forecast.GET("/history", h.Forecast.GetHistory)
		forecast.POST("/generate", h.Forecast.Generate)
		forecast.GET("/top-dates", h.Forecast.GetTopDates)
		forecast.GET("/top-products/:period", h.Forecast.GetTopProducts)
	}
}

func registerDashboardRoutes(protected *gin.RouterGroup, h *Handlers) {
	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("", h.Dashboard.GetStats)
		dashboard.GET("/top-products", h.Dashboard.GetTopProducts)
		dashboard.GET("/top-clients", h.Dashboard.GetTopClients)
		dashboard.GET("/low-stock", h.Dashboard.GetLowStock)
	}
}
