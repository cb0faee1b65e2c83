// Package main is the entrypoint for the licensing API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/agent8/licensing/internal/auth"
	"github.com/agent8/licensing/internal/billing"
	"github.com/agent8/licensing/internal/cache"
	"github.com/agent8/licensing/internal/config"
	"github.com/agent8/licensing/internal/handler"
	"github.com/agent8/licensing/internal/metrics"
	"github.com/agent8/licensing/internal/middleware"
	"github.com/agent8/licensing/internal/server"
	"github.com/agent8/licensing/internal/store"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Local development convenience; the file is optional.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize cache (optional)
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	}

	// Initialize the entitlement store
	metricsRecorder := metrics.NewNoop()
	st, dbPinger, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error(
			"failed to initialize entitlement store",
			slog.String("backend", cfg.EntitlementsBackend),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	if cacheClient != nil {
		st = store.NewCachedStore(st, cacheClient, metricsRecorder)
	}

	// Initialize the payment backend. A missing key degrades to
	// "payments disabled" instead of failing startup.
	var backend billing.Backend
	if cfg.PaymentsEnabled() {
		backend = billing.NewStripeBackend(cfg.StripeSecretKey, cfg.BackendTimeout)
		logger.Info("payment backend configured")
	} else {
		logger.Warn("no payment backend key configured, payment features disabled")
	}

	// Initialize billing components
	resolver := billing.NewCatalogResolver(backend, cfg.ProductName, logger)
	checkoutManager := billing.NewCheckoutManager(backend, resolver,
		cfg.GetSuccessURL(), cfg.GetCancelURL(), metricsRecorder, logger)
	verifier := billing.NewSessionVerifier(backend, st, metricsRecorder, logger)

	// Owner override
	authenticator := auth.NewOwnerAuthenticator(cfg.OwnerAccessCode, cfg.OwnerAccessCodeHash)
	if !authenticator.Configured() {
		logger.Warn("owner access code not configured, owner override disabled")
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(dbPinger, pinger(cacheClient), cfg.PaymentsEnabled())
	pageHandler := handler.NewPageHandler(cfg.ProductName, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutManager, logger)
	verifyHandler := handler.NewVerifyHandler(verifier, logger)
	entitlementHandler := handler.NewEntitlementHandler(st, metricsRecorder, logger)
	ownerHandler := handler.NewOwnerHandler(authenticator, metricsRecorder, logger)

	// Setup router
	r := setupRouter(healthHandler, pageHandler, checkoutHandler, verifyHandler,
		entitlementHandler, ownerHandler, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("entitlement store", func(ctx context.Context) error {
		return st.Close()
	})
	if cacheClient != nil {
		srv.OnShutdown("redis cache", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
		"entitlements_backend", cfg.EntitlementsBackend,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildStore constructs the configured entitlement store and, for
// backends with a connection, its readiness pinger.
func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, handler.HealthChecker, error) {
	switch cfg.EntitlementsBackend {
	case config.StoreBackendPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to database")
		return pg, pg, nil
	case config.StoreBackendMemory:
		return store.NewMemoryStore(), nil, nil
	default:
		return store.NewFileStore(cfg.EntitlementsPath), nil, nil
	}
}

// pinger adapts a possibly-nil cache client to the health check
// interface without a typed-nil surprise.
func pinger(c *cache.Cache) handler.HealthChecker {
	if c == nil {
		return nil
	}
	return c
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	pageHandler *handler.PageHandler,
	checkoutHandler *handler.CheckoutHandler,
	verifyHandler *handler.VerifyHandler,
	entitlementHandler *handler.EntitlementHandler,
	ownerHandler *handler.OwnerHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Hosted pages
	r.Get("/", pageHandler.Plans)
	r.Get("/success.html", pageHandler.Success)
	r.Get("/cancel.html", pageHandler.Cancel)

	// Licensing API
	r.Post("/create-checkout-session", checkoutHandler.Create)
	r.Get("/verify-session", verifyHandler.Verify)
	r.Get("/entitlement", entitlementHandler.Check)

	// Owner login with IP-based rate limiting
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:       logger,
		Cache:        cacheClient,
		LoginEnabled: cfg.RateLimitLoginEnabled,
		LoginRPS:     cfg.RateLimitLoginRPS,
		LoginBurst:   cfg.RateLimitLoginBurst,
	}
	r.With(middleware.RateLimitLogin(rateLimitCfg)).Post("/owner-login", ownerHandler.Login)

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
