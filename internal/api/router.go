package api

import (
	"context"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/veluxora/auction-engine/docs"
	"github.com/veluxora/auction-engine/internal/api/handler"
	"github.com/veluxora/auction-engine/internal/api/middleware"
	"github.com/veluxora/auction-engine/internal/core/domain"
	"github.com/veluxora/auction-engine/internal/core/service"
	"github.com/veluxora/auction-engine/internal/infrastructure/config"
	mongodb "github.com/veluxora/auction-engine/internal/infrastructure/db/mongo"
	redisdb "github.com/veluxora/auction-engine/internal/infrastructure/db/redis"
	"github.com/veluxora/auction-engine/internal/infrastructure/http/handlers"
	"github.com/veluxora/auction-engine/internal/infrastructure/queue"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The event publisher workers run until ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auction"))

	// --- Infrastructure ---
	registryRepo := mongodb.NewRegistryRepository(db)
	auctionRepo := mongodb.NewAuctionRepository(db)
	bidRepo := mongodb.NewBidRepository(db)
	custodyRepo := mongodb.NewCustodyRepository(db, cfg.Auction.AllowAssetReuse)
	escrowRepo := mongodb.NewEscrowRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	authRepo := mongodb.NewAuthRepository(db)
	cache := redisdb.NewDetailCache(rdb, log)

	publisher := queue.NewPublisher(cfg.Auction.EventWorkers, eventRepo, log)
	publisher.Start(ctx)

	// --- Services ---
	locks := service.NewAuctionLocks()
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, 24*time.Hour)
	registryService := service.NewRegistryService(registryRepo, publisher, log)
	auctionService := service.NewAuctionService(
		auctionRepo, registryRepo, custodyRepo, publisher, cache, locks, log,
	)
	bidService := service.NewBidService(
		auctionRepo, registryRepo, bidRepo, escrowRepo, publisher, cache, locks, log,
	)
	claimService := service.NewClaimService(
		auctionRepo, custodyRepo, escrowRepo, publisher, cache, locks, log,
	)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	registryHandler := handler.NewRegistryHandler(registryService)
	auctionHandler := handler.NewAuctionHandler(auctionService)
	bidHandler := handler.NewBidHandler(bidService)
	claimHandler := handler.NewClaimHandler(claimService, auctionService)
	eventsHandler := handler.NewEventsHandler(auctionService, eventRepo)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)

	// --- Engine routes (JWT required) ---
	v1 := e.Group("/v1", middleware.Auth(cfg.JWTSecret))

	v1.POST("/registry", registryHandler.Register)
	v1.GET("/registry/:participant", registryHandler.IsRegistered)

	v1.POST("/auctions", auctionHandler.Create)
	v1.GET("/auctions/:id", auctionHandler.Get)
	v1.PUT("/auctions/:id", auctionHandler.Update)
	v1.POST("/auctions/:id/cancel", auctionHandler.Cancel)
	v1.GET("/auctions", auctionHandler.List, middleware.RBAC(domain.RoleAdmin, domain.RoleTrader))

	v1.POST("/auctions/:id/bids", bidHandler.Place)
	v1.GET("/auctions/:id/bids", bidHandler.History)

	v1.POST("/auctions/:id/claims/asset", claimHandler.ClaimAsset)
	v1.POST("/auctions/:id/claims/funds", claimHandler.ClaimFunds)
	v1.POST("/auctions/:id/reclaim", claimHandler.Reclaim)

	v1.GET("/auctions/:id/events", eventsHandler.List)

	// --- Health probes (no auth required) ---
	probes := handlers.NewProbes(db, rdb)
	e.GET("/health", probes.Liveness)
	e.GET("/health/ready", probes.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
