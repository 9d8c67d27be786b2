package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kale-connect/kaleconnect/internal/audit"
	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/config"
	"github.com/kale-connect/kaleconnect/internal/kyc"
	"github.com/kale-connect/kaleconnect/internal/metrics"
	"github.com/kale-connect/kaleconnect/internal/middleware"
	"github.com/kale-connect/kaleconnect/internal/notification"
	"github.com/kale-connect/kaleconnect/internal/rates"
	"github.com/kale-connect/kaleconnect/internal/remittance"
	"github.com/kale-connect/kaleconnect/internal/store"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Store    store.Store
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return fmt.Errorf("contract store is required")
	}
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	tokens := auth.NewTokenIssuer(d.Cfg.JWTSecret, d.Cfg.TokenTTL)

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.BearerAuth(tokens))
	app.Use(middleware.Audit(d.Logger))

	// Health and metrics
	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	// Registries
	var authz auth.Authorizer = auth.ContextAuthorizer{}
	if d.Cfg.AuthDisabled && d.Cfg.IsDev() {
		d.Logger.Warn("authorization disabled; every principal is trusted")
		authz = auth.AllowAll{}
	}
	m := metrics.New(d.Registry)
	notifier := notification.NewLoggerNotifier(d.Logger)

	trail := audit.NewTrail(d.Store, d.Cfg.AuditSecret)

	kycRegistry := kyc.NewRegistry(d.Store, authz, trail, d.Logger, m)
	oracle := rates.NewOracle(d.Store, authz, trail, d.Logger, m)
	ledger := remittance.NewLedger(d.Store, authz, notifier, trail, d.Logger, m)
	authSvc := auth.NewService(d.Store, tokens)

	var idempotency fiber.Handler
	if d.Cache != nil {
		idempotency = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthRoutes(api, auth.NewHandler(authSvc), middleware.TokenRateLimit(d.Cache, d.Cfg.TokenRateLimit))
	RegisterKYCRoutes(api, kyc.NewHandler(kycRegistry))
	RegisterRatesRoutes(api, rates.NewHandler(oracle))
	RegisterRemittanceRoutes(api, remittance.NewHandler(ledger), idempotency)
	RegisterAuditRoutes(api, audit.NewHandler(trail, authz))

	return nil
}
