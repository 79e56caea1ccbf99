// Package main is the entrypoint for the linkveil redirect server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linkveil/linkveil/internal/botdetect"
	"github.com/linkveil/linkveil/internal/cache"
	"github.com/linkveil/linkveil/internal/cloak"
	"github.com/linkveil/linkveil/internal/config"
	"github.com/linkveil/linkveil/internal/geo"
	"github.com/linkveil/linkveil/internal/handler"
	"github.com/linkveil/linkveil/internal/metrics"
	"github.com/linkveil/linkveil/internal/middleware"
	"github.com/linkveil/linkveil/internal/server"
	"github.com/linkveil/linkveil/internal/service"
	"github.com/linkveil/linkveil/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	srv := buildServer(ctx, cfg, logger)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"store_backend", cfg.StoreBackend,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildServer wires the stores, cache, pipeline, and router into a Server.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) *server.Server {
	var shutdowns []func(s *server.Server)

	// Record store
	var (
		linkStore  store.LinkStore
		clickStore store.ClickStore
	)
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to database")
		linkStore, clickStore = pg, pg
		shutdowns = append(shutdowns, func(s *server.Server) {
			s.OnShutdown("postgres", func(ctx context.Context) error {
				pg.Close()
				return nil
			})
		})

	default:
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Error("failed to open file store", "error", err, "data_dir", cfg.DataDir)
			os.Exit(1)
		}
		linkStore = fs
		clickStore = fs

		if cfg.ClickLogMode == config.ClickLogAppend {
			log, err := store.OpenClickLog(filepath.Join(cfg.DataDir, "clicks.csv"))
			if err != nil {
				logger.Error("failed to open click log", "error", err)
				os.Exit(1)
			}
			clickStore = log
			shutdowns = append(shutdowns, func(s *server.Server) {
				s.OnShutdown("click log", func(ctx context.Context) error {
					return log.Close()
				})
			})
		}
	}

	// Optional link cache
	var linkCache *cache.Cache
	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis")
		linkCache = c
		shutdowns = append(shutdowns, func(s *server.Server) {
			s.OnShutdown("cache", func(ctx context.Context) error {
				return c.Close()
			})
		})
	}

	// Optional geolocation
	var geoResolver service.GeoResolver
	if cfg.GeoIPPath != "" {
		resolver, err := geo.Open(cfg.GeoIPPath)
		if err != nil {
			logger.Error("failed to open GeoIP database", "error", err, "path", cfg.GeoIPPath)
			os.Exit(1)
		}
		geoResolver = resolver
		shutdowns = append(shutdowns, func(s *server.Server) {
			s.OnShutdown("geoip", func(ctx context.Context) error {
				return resolver.Close()
			})
		})
	}

	// Metrics
	var recorder metrics.Recorder = metrics.NewNoop()
	if cfg.MetricsEnabled {
		recorder = metrics.NewPrometheus(prometheus.DefaultRegisterer)
	}

	// Redirect pipeline
	classifier := botdetect.NewDefault()
	renderer := cloak.NewRenderer(cfg.CloakSafeURL)
	redirectService := service.NewRedirectService(
		linkStore, clickStore, linkCache,
		classifier, renderer, geoResolver,
		cfg.ClickIDParam, recorder, logger,
	)

	// Handlers and router
	var cacheChecker handler.HealthChecker
	if linkCache != nil {
		cacheChecker = linkCache
	}
	healthHandler := handler.NewHealthHandler(linkStore, cacheChecker)
	redirectHandler := handler.NewRedirectHandler(redirectService, logger)

	r := setupRouter(healthHandler, redirectHandler, cfg, logger)

	srv := server.New(r, cfg.AppPort, cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout, logger)
	for _, register := range shutdowns {
		register(srv)
	}
	return srv
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	redirectHandler *handler.RedirectHandler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/r/{linkID}", redirectHandler.Redirect)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
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
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
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
