package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/benesafe/registry/internal/api/handler"
	"github.com/benesafe/registry/internal/api/middleware"
	"github.com/benesafe/registry/internal/core/ports"
	"github.com/benesafe/registry/internal/infrastructure/telemetry"
)

// Services bundles the core services the HTTP layer exposes.
type Services struct {
	Auth         ports.AuthService
	Registry     ports.RegistryService
	Profiles     ports.ProfileService
	Records      ports.RecordService
	Entitlements ports.EntitlementService
}

// RouterConfig carries the HTTP settings taken from the service config.
type RouterConfig struct {
	JWTSecret          string
	RateLimitPerMinute int
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, db *mongo.Database, rdb *redis.Client, cfg RouterConfig, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Tracing("github.com/benesafe/registry/internal/api"))
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddleware("benesafe"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	registryHandler := handler.NewRegistryHandler(svc.Registry, svc.Entitlements)
	profileHandler := handler.NewProfileHandler(svc.Profiles, svc.Entitlements)
	adminHandler := handler.NewAdminHandler(svc.Profiles, svc.Entitlements)
	recordHandler := handler.NewRecordHandler(svc.Records)

	authMiddleware := middleware.Auth(cfg.JWTSecret)
	profileMiddleware := middleware.ResolveProfile(svc.Entitlements)
	rateLimit := middleware.RateLimit(rdb, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(cfg.RateLimitPerMinute),
	}, log)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, rateLimit)
	auth.POST("/login", authHandler.Login, rateLimit)
	auth.GET("/verify-email", authHandler.VerifyEmail, rateLimit)
	auth.POST("/resend-verification", authHandler.ResendVerification, rateLimit, authMiddleware)

	// --- Public catalogue ---
	e.GET("/v1/bouquets", registryHandler.ListBouquets)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", authMiddleware, profileMiddleware)

	v1.GET("/me", profileHandler.Me)
	v1.GET("/me/entitlements", profileHandler.Entitlements)
	v1.PUT("/me/bouquet", profileHandler.ChangeBouquet)

	v1.GET("/records", recordHandler.List)
	v1.POST("/records", recordHandler.Create)
	v1.DELETE("/records/:id", recordHandler.Delete)

	// Admin handlers check capabilities themselves.
	admin := v1.Group("/admin")
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:user_id/role", adminHandler.AssignRole)
	admin.PUT("/users/:user_id/bouquet", adminHandler.AssignBouquet)
	admin.GET("/verifications", adminHandler.ListVerifications)
	admin.POST("/verifications/:user_id", adminHandler.Review)

	admin.GET("/roles", registryHandler.ListRoles)
	admin.POST("/roles", registryHandler.CreateRole)
	admin.PUT("/roles/:id", registryHandler.UpdateRole)
	admin.DELETE("/roles/:id", registryHandler.DeleteRole)

	admin.GET("/bouquets", registryHandler.ListManagedBouquets)
	admin.POST("/bouquets", registryHandler.CreateBouquet)
	admin.PUT("/bouquets/:id", registryHandler.UpdateBouquet)
	admin.DELETE("/bouquets/:id", registryHandler.DeleteBouquet)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(map[string]handler.DependencyCheck{
		"mongodb": func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
		"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one structured access-log line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("trace_id", telemetry.TraceID(c.Request().Context())).
				Msg("request")
			return nil
		},
	})
}
