package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lumengrid/lumen_api/internal/cache"
	"github.com/lumengrid/lumen_api/internal/config"
	"github.com/lumengrid/lumen_api/internal/database"
	"github.com/lumengrid/lumen_api/internal/handler"
	"github.com/lumengrid/lumen_api/internal/middleware"
	"github.com/lumengrid/lumen_api/internal/repository"
	"github.com/lumengrid/lumen_api/internal/service"
	"github.com/lumengrid/lumen_api/internal/sse"
	"github.com/lumengrid/lumen_api/internal/worker"
)

// main is the application entrypoint for the Lumengrid sales portal API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting lumen api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize calculation cache
	calcCache := cache.NewCalculationCache(redisClient, cfg.Cache.CalculationTTL)

	// 4. Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	promoRepo := repository.NewPromotionRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	// 5. Initialize SSE hub for rep dashboard updates
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)

	// 6. Initialize services
	authSvc := service.NewAuthService(clientRepo)
	adminAuthSvc := service.NewAdminAuthService(adminRepo)
	clientSvc := service.NewClientService(clientRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	promoSvc := service.NewPromotionService(promoRepo)
	selectionSvc := service.NewSelectionService(selectionRepo, customerRepo, promoSvc, calcCache, notifier)
	exportSvc := service.NewExportService(selectionSvc)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:    handler.NewHealthHandler(db, redisClient),
		Auth:      handler.NewAuthHandler(adminAuthSvc),
		Promotion: handler.NewPromotionHandler(promoSvc),
		Selection: handler.NewSelectionHandler(selectionSvc),
		Pricing:   handler.NewPricingHandler(selectionSvc),
		Export:    handler.NewExportHandler(exportSvc),
		Client:    handler.NewClientHandler(clientSvc),
		Customer:  handler.NewCustomerHandler(customerSvc),
		SSE:       handler.NewSSEHandler(hub),
	}

	// 8. Initialize middleware
	authMw := middleware.NewAuthMiddleware(authSvc)
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, authMw, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewPromotionWindowWorker(promoRepo, cfg.Worker.PromotionWindowInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Promotion *handler.PromotionHandler
	Selection *handler.SelectionHandler
	Pricing   *handler.PricingHandler
	Export    *handler.ExportHandler
	Client    *handler.ClientHandler
	Customer  *handler.CustomerHandler
	SSE       *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, authMiddleware *middleware.AuthMiddleware, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Portal routes (protected with client API key)
	v1 := router.Group("/v1")
	v1.Use(authMiddleware.Handle())
	{
		v1.GET("/promotions/active", handlers.Promotion.GetActive)
		v1.POST("/pricing/quote", handlers.Pricing.Quote)

		v1.POST("/selections", handlers.Selection.CreateSelection)
		v1.GET("/selections/:id", handlers.Selection.GetSelection)
		v1.PUT("/selections/:id/items", handlers.Selection.UpsertItem)
		v1.DELETE("/selections/:id/items/:sku", handlers.Selection.RemoveItem)
		v1.GET("/selections/:id/pricing", handlers.Selection.GetPricing)
		v1.POST("/selections/:id/submit", handlers.Selection.SubmitSelection)
		v1.GET("/selections/:id/export", handlers.Export.ExportSelection)

		v1.GET("/customers/:id", handlers.Customer.GetCustomer)
	}

	// SSE stream authenticates via query-param JWT inside the handler
	router.GET("/v1/admin/sse", handlers.SSE.Stream)

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		// Promotion Management
		admin.GET("/promotions", handlers.Promotion.ListPromotions)
		admin.POST("/promotions", handlers.Promotion.CreatePromotion)
		admin.POST("/promotions/validate", handlers.Promotion.ValidatePromotion)
		admin.GET("/promotions/:id", handlers.Promotion.GetPromotion)
		admin.PUT("/promotions/:id", handlers.Promotion.UpdatePromotion)
		admin.PATCH("/promotions/:id/status", handlers.Promotion.SetPromotionStatus)
		admin.DELETE("/promotions/:id", handlers.Promotion.DeletePromotion)

		// Selection oversight
		admin.GET("/selections", handlers.Selection.ListSelections)
		admin.POST("/selections/:id/archive", handlers.Selection.ArchiveSelection)

		// Customer Management
		admin.GET("/customers", handlers.Customer.ListCustomers)
		admin.POST("/customers", handlers.Customer.CreateCustomer)

		// Client Management
		admin.POST("/clients", handlers.Client.CreateClient)
		admin.GET("/clients", handlers.Client.ListClients)
		admin.GET("/clients/:id", handlers.Client.GetClient)
		admin.PUT("/clients/:id", handlers.Client.UpdateClient)
		admin.POST("/clients/:id/regenerate", handlers.Client.RegenerateKeys)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
