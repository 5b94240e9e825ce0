package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/habitaro/authgate/internal/auth"
	"github.com/habitaro/authgate/internal/background"
	"github.com/habitaro/authgate/internal/config"
	"github.com/habitaro/authgate/internal/database"
	"github.com/habitaro/authgate/internal/handlers"
	middlewareCustom "github.com/habitaro/authgate/internal/middleware"
	"github.com/habitaro/authgate/internal/repositories"
	"github.com/habitaro/authgate/internal/routes"
	"github.com/habitaro/authgate/internal/services"
	pkghttp "github.com/habitaro/authgate/pkg/http"
	pkglogger "github.com/habitaro/authgate/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	planFeatureRepo := repositories.NewPlanFeatureRepository(db)
	customFieldRepo := repositories.NewCustomFieldRepository(db)

	// Attempt store backend
	attemptStore, err := newAttemptStore(cfg.BruteForce, logger)
	if err != nil {
		logger.Error("failed to initialize attempt store", slog.Any("error", err))
		os.Exit(1)
	}

	clock := services.SystemClock()
	guard := services.NewBruteForceGuard(attemptStore, cfg.BruteForce, clock, logger)

	// Janitor for stale attempt records
	cleanupManager := background.NewCleanupManager(attemptStore, logger, cfg.BruteForce.SweepInterval)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
		cfg.Auth.CheckoutTokenTTL,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Timing delay for failed credential checks
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	// Initialize services
	resolver := services.NewSubscriptionResolver(subscriptionRepo, logger)
	fieldGate := services.NewCustomFieldGate(planFeatureRepo, customFieldRepo, logger)
	authService := services.NewAuthService(
		userRepo,
		guard,
		resolver,
		fieldGate,
		tokenManager,
		timingDelay,
		clock,
		logger,
		auditLogger,
	)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: parseTrustedProxies()}
	cookieConfig := auth.CookieConfig{
		Secure: cfg.Server.Env == "production",
		MaxAge: int(cfg.Auth.RefreshTokenTTL.Seconds()),
	}
	authHandler := handlers.NewAuthHandler(authService, ipConfig, cookieConfig)

	// Setup router
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, tokenManager)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start janitor
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// newAttemptStore builds the configured attempt store backend. Redis is
// pinged at startup so a bad address fails fast instead of on the first
// login.
func newAttemptStore(cfg config.BruteForceConfig, logger *slog.Logger) (services.AttemptStore, error) {
	if cfg.Backend != "redis" {
		logger.Info("using in-memory attempt store")
		return repositories.NewMemoryAttemptStore(), nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("using redis attempt store", slog.String("addr", cfg.RedisAddr))
	return repositories.NewRedisAttemptStore(client), nil
}

// parseTrustedProxies reads TRUSTED_PROXIES as a comma-separated list of
// CIDR ranges. Empty means no proxy headers are ever trusted.
func parseTrustedProxies() []string {
	raw := os.Getenv("TRUSTED_PROXIES")
	if raw == "" {
		return nil
	}

	var proxies []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}
