package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chartline/internal/config"
	"chartline/internal/database"
	"chartline/internal/handlers"
	middlewareCustom "chartline/internal/middleware"
	"chartline/internal/models"
	"chartline/internal/routes"
	"chartline/internal/services"
	"chartline/internal/store"
	"chartline/internal/store/filestore"
	"chartline/internal/store/memstore"
	"chartline/internal/store/pgstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("backend", cfg.Storage.Backend))

	users, attempts, audit, db, err := buildStores(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	authService := services.NewAuthService(users, attempts, audit, logger, cfg.Auth.LockoutThreshold)
	timelineService := services.NewTimelineService()

	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(authService, audit)
	timelineHandler := handlers.NewTimelineHandler(timelineService)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, authService, users, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	corsConfig := middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, adminHandler, timelineHandler,
		middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Auth.LoginRequestsPerMinute})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := db.HealthCheck(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"healthy","database":"up"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// buildStores constructs the credential, attempt and audit stores for
// the configured backend. The returned *database.DB is non-nil only for
// the postgres backend.
func buildStores(cfg *config.Config, logger *slog.Logger) (store.CredentialStore, store.AttemptStore, store.AuditLog, *database.DB, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memstore.NewCredentialStore(), memstore.NewAttemptStore(), memstore.NewAuditLog(), nil, nil

	case config.BackendFile:
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o700); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		return filestore.NewCredentialStore(cfg.Storage.DataDir),
			filestore.NewAttemptStore(cfg.Storage.DataDir),
			filestore.NewAuditLog(cfg.Storage.DataDir),
			nil, nil

	case config.BackendPostgres:
		db, err := database.NewConnection(&cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		return pgstore.NewCredentialStore(db), pgstore.NewAttemptStore(db), pgstore.NewAuditLog(db), db, nil

	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// ensureAdminUser creates the first admin account when ADMIN_USERNAME
// and ADMIN_PASSWORD are set and the username is free. The password
// still has to satisfy the password policy, and ADMIN_EMAIL, when set,
// the email shape check.
func ensureAdminUser(ctx context.Context, authService *services.AuthService, users store.CredentialStore, logger *slog.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminEmail := os.Getenv("ADMIN_EMAIL")

	if adminUsername == "" || adminPassword == "" {
		logger.Info("no ADMIN_USERNAME or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}
	if adminEmail == "" {
		adminEmail = adminUsername + "@localhost.local"
	}

	exists, err := users.Exists(ctx, adminUsername)
	if err != nil {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}
	if exists {
		logger.Info("admin user already exists", slog.String("username", adminUsername))
		return nil
	}

	ok, err := authService.CreateUser(ctx, adminUsername, adminEmail, adminPassword, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	if !ok {
		return fmt.Errorf("admin user rejected, check ADMIN_PASSWORD against the password policy and ADMIN_EMAIL format")
	}

	logger.Info("admin user created", slog.String("username", adminUsername))
	return nil
}
