package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/config"
	"github.com/sokoni/eventpos-api/internal/infrastructure/authz"
	"github.com/sokoni/eventpos-api/internal/infrastructure/cache"
	"github.com/sokoni/eventpos-api/internal/infrastructure/database"
	"github.com/sokoni/eventpos-api/internal/infrastructure/messaging"
	"github.com/sokoni/eventpos-api/internal/infrastructure/repository"
	"github.com/sokoni/eventpos-api/internal/presentation/http/handler"
	"github.com/sokoni/eventpos-api/internal/presentation/http/routes"
	"github.com/sokoni/eventpos-api/pkg/logger"
	"github.com/sokoni/eventpos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	zapLogger, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Connect to Redis for session carts
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Order events over RabbitMQ. The API stays up without a broker; events
	// are simply not published.
	var publisher service.EventPublisher
	rabbitPublisher, err := messaging.NewRabbitMQPublisher(&cfg.RabbitMQ)
	if err != nil {
		zapLogger.Warn("RabbitMQ unavailable, order events disabled", zap.Error(err))
	} else {
		publisher = rabbitPublisher
		defer rabbitPublisher.Close()
	}

	// Automation triggers over Kafka
	kafkaDispatcher := messaging.NewKafkaDispatcher(&cfg.Kafka)
	defer kafkaDispatcher.Close()

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	eventRepo := repository.NewEventRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	stockRepo := repository.NewStockRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	gate := authz.NewGate()
	cartStore := cache.NewCartStore(redisClient, cfg.Redis.CartTTL)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	stockService := service.NewStockService(stockRepo, productRepo, gate, kafkaDispatcher, zapLogger)
	productService := service.NewProductService(productRepo, categoryRepo, stockService, gate)
	eventService := service.NewEventService(eventRepo, gate, cfg.Ordering.BaseURL)
	orderService := service.NewOrderService(orderRepo, productRepo, stockRepo, sequenceRepo, eventRepo, gate, publisher, kafkaDispatcher, zapLogger)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, gate, publisher, kafkaDispatcher, zapLogger)
	cartService := service.NewCartService(cartStore, eventRepo, productRepo, zapLogger)
	ingestionService := service.NewIngestionService(orderService, cartService, cartStore, zapLogger)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Order:   handler.NewOrderHandler(orderService),
		Payment: handler.NewPaymentHandler(paymentService),
		Stock:   handler.NewStockHandler(stockService),
		Product: handler.NewProductHandler(productService),
		Event:   handler.NewEventHandler(eventService),
		Cart:    handler.NewCartHandler(cartService, ingestionService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          zapLogger,
		IdempotencyRepo: idempotencyRepo,
		OrgRepo:         orgRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
