package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sokoni/eventpos-api/internal/config"
	domainRepo "github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/internal/presentation/http/handler"
	"github.com/sokoni/eventpos-api/internal/presentation/http/middleware"
	"github.com/sokoni/eventpos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth    *handler.AuthHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
	Stock   *handler.StockHandler
	Product *handler.ProductHandler
	Event   *handler.EventHandler
	Cart    *handler.CartHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *zap.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	OrgRepo         domainRepo.OrganizationRepository
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

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Customer-facing ordering routes, scoped by organization slug
	registerPublicRoutes(router, h, deps)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.RequireOrganization())

		// Per-organization rate limiter
		rateLimiter := middleware.NewOrgRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}
}

func registerPublicRoutes(router *gin.Engine, h *Handlers, deps *Deps) {
	public := router.Group("/public/:org")
	public.Use(middleware.OrganizationFromSlug(deps.OrgRepo))
	{
		public.GET("/products", h.Product.List)
		public.GET("/events/:id", h.Event.Get)

		public.POST("/sessions", h.Cart.StartSession)

		session := public.Group("/sessions/:session_id")
		{
			session.GET("/cart", h.Cart.GetCart)
			session.POST("/cart/items", h.Cart.AddItem)
			session.DELETE("/cart/items/:index", h.Cart.RemoveItem)
			session.POST("/checkout", middleware.IdempotencyRequired(deps.IdempotencyRepo), h.Cart.Checkout)
			session.DELETE("", h.Cart.Abandon)
		}
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.GET("/profile", h.Auth.Me)

	// Orders
	orders := protected.Group("/orders")
	{
		orders.POST("", middleware.Idempotency(deps.IdempotencyRepo), h.Order.Create)
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.PUT("/:id", h.Order.Update)
		orders.POST("/:id/items", h.Order.AddItem)
		orders.PATCH("/:id/items/:item_id/quantity", h.Order.UpdateItemQuantity)
		orders.PATCH("/:id/items/:item_id/status", h.Order.UpdateItemStatus)
		orders.POST("/:id/items/:item_id/cancel", h.Order.CancelItem)
		orders.POST("/:id/complete", h.Order.Complete)
		orders.POST("/:id/cancel", h.Order.Cancel)

		// Payments
		orders.POST("/:id/payments", middleware.Idempotency(deps.IdempotencyRepo), h.Payment.Capture)
		orders.GET("/:id/payments", h.Payment.List)
	}

	// Products and categories
	products := protected.Group("/products")
	{
		products.POST("", h.Product.Create)
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
	categories := protected.Group("/categories")
	{
		categories.POST("", h.Product.CreateCategory)
		categories.GET("", h.Product.ListCategories)
	}

	// Stock
	stock := protected.Group("/stock")
	{
		stock.POST("/products/:id/adjust", h.Stock.Adjust)
		stock.POST("/products/:id/count", h.Stock.Count)
		stock.GET("/products/:id/movements", h.Stock.Movements)
		stock.GET("/low", h.Stock.LowStock)
	}

	// Events
	events := protected.Group("/events")
	{
		events.POST("", h.Event.Create)
		events.GET("", h.Event.List)
		events.GET("/:id", h.Event.Get)
		events.PATCH("/:id/status", h.Event.UpdateStatus)
		events.GET("/:id/qr", h.Event.OrderingQR)
	}
}
