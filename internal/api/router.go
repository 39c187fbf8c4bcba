package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/momocakes/commerce-api/internal/api/handler"
	"github.com/momocakes/commerce-api/internal/api/middleware"
	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
	"github.com/momocakes/commerce-api/internal/core/service"
	"github.com/momocakes/commerce-api/internal/infrastructure/config"
	mongodb "github.com/momocakes/commerce-api/internal/infrastructure/db/mongo"
	redisdb "github.com/momocakes/commerce-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	uploader ports.ImageUploader,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("commerce"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	productRepo := mongodb.NewProductRepository(db)

	directory := service.NewUserDirectory(userRepo)
	issuer := service.NewTokenIssuer(directory, cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Throttle.MaxFailures, cfg.Throttle.Lockout)
	authService := service.NewAuthService(directory, issuer, throttle, log)
	productService := service.NewProductService(productRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService, uploader, cfg.Media.Folder, log)

	authRequired := middleware.Auth(cfg.JWT.AccessSecret)
	refreshRequired := middleware.Refresh(cfg.JWT.RefreshSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh, refreshRequired)
	auth.GET("/profile", authHandler.Profile, authRequired)

	authAdmin := auth.Group("/admin", authRequired, adminOnly)
	authAdmin.POST("/register", authHandler.RegisterAdmin)
	authAdmin.POST("/create-distributor", authHandler.CreateDistributor)
	authAdmin.GET("/distributors", authHandler.ListDistributors)

	// --- Product routes ---
	products := e.Group("/products")
	products.GET("", productHandler.ListActive)
	products.GET("/admin/all", productHandler.ListAll, authRequired, adminOnly)
	products.GET("/admin/stats", productHandler.Stats, authRequired, adminOnly)
	products.GET("/:id", productHandler.Get)

	products.POST("", productHandler.Create, authRequired, adminOnly)
	products.PATCH("/:id", productHandler.Update, authRequired, adminOnly)
	products.PUT("/:id/quantity", productHandler.SetQuantity, authRequired, adminOnly)
	products.PATCH("/:id/increment-quantity", productHandler.Increment, authRequired, adminOnly)
	products.PATCH("/:id/decrement-quantity", productHandler.Decrement, authRequired, adminOnly)
	products.PATCH("/:id/toggle-active", productHandler.ToggleActive, authRequired, adminOnly)
	products.DELETE("/:id", productHandler.Remove, authRequired, adminOnly)
	products.POST("/:id/upload-image", productHandler.UploadImage, authRequired, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
