package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/apiauth/account-service/internal/api/handler"
	"github.com/apiauth/account-service/internal/api/middleware"
	"github.com/apiauth/account-service/internal/core/service"
	"github.com/apiauth/account-service/internal/infrastructure/config"
	mongostore "github.com/apiauth/account-service/internal/infrastructure/db/mongo"
	redisstore "github.com/apiauth/account-service/internal/infrastructure/db/redis"
	"github.com/apiauth/account-service/internal/infrastructure/queue"
	"github.com/apiauth/account-service/internal/infrastructure/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb and audit may be nil; the login throttle and the audit trail are then
// disabled.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, audit *queue.Dispatcher, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("account"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)

	var throttle service.LoginThrottle
	if rdb != nil && !cfg.Throttle.Disabled {
		throttle = redisstore.NewLoginThrottle(rdb, cfg.Throttle.MaxFailures, cfg.Throttle.Window)
	}

	accounts := service.NewAccountService(userRepo, issuer, throttle, cfg.BcryptCost, log)

	var sink handler.AuditSink
	if audit != nil {
		sink = audit
	}

	authHandler := handler.NewAuthHandler(accounts, sink)
	accountHandler := handler.NewAccountHandler(accounts, sink)
	authMiddleware := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC("admin")

	// --- Anonymous routes ---
	e.POST("/login", authHandler.Login)
	e.POST("/register", authHandler.Register)

	// --- Authenticated routes ---
	e.PUT("/update/:username", accountHandler.UpdateSelf, authMiddleware)
	e.GET("/authenticated", accountHandler.Authenticated, authMiddleware)

	// --- Administrator routes (rejected by RBAC before the engine runs) ---
	e.PUT("/admin/update/:username", accountHandler.UpdateAsAdmin, authMiddleware, adminOnly)
	e.DELETE("/admin/delete/:username", accountHandler.Delete, authMiddleware, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
