// ScamDEX - scam investigation engine server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sush8471/ScamDEX-AI/internal/agent"
	"github.com/sush8471/ScamDEX-AI/internal/api"
	"github.com/sush8471/ScamDEX-AI/internal/config"
	"github.com/sush8471/ScamDEX-AI/internal/feed"
	"github.com/sush8471/ScamDEX-AI/internal/identity"
	"github.com/sush8471/ScamDEX-AI/internal/metrics"
	"github.com/sush8471/ScamDEX-AI/internal/middleware"
	"github.com/sush8471/ScamDEX-AI/internal/session"
	"github.com/sush8471/ScamDEX-AI/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "store", cfg.StoreBackend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped successfully")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repo, err := store.Open(ctx, store.Backend{
		Kind:   cfg.StoreBackend,
		DBPath: cfg.DBPath,
		Redis: store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.SessionTTL,
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()
	slog.Info("Session store connected", "backend", cfg.StoreBackend)

	var collab agent.Collaborator = agent.Offline{}
	if cfg.Collaborator.URL != "" {
		client, err := agent.NewWebhookClient(agent.WebhookConfig{
			URL:            cfg.Collaborator.URL,
			RequestTimeout: cfg.Collaborator.Timeout,
		}, logger)
		if err != nil {
			return err
		}
		collab = client
		slog.Info("Collaborator configured", "url", cfg.Collaborator.URL)
	} else {
		slog.Info("COLLABORATOR_URL not set, every turn uses the fallback responder")
	}

	conversationLogger, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:   cfg.ConversationLog.Enabled,
		Dir:       cfg.ConversationLog.Dir,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = conversationLogger.Close() }()

	hub := feed.NewHub()
	opts := session.DefaultOptions()
	opts.Platform = cfg.Engine.Platform
	opts.FallbackDelay = cfg.Engine.FallbackDelay
	opts.CompletionDelay = cfg.Engine.CompletionDelay
	opts.FallbackCompletionDelay = cfg.Engine.FallbackCompletionDelay
	opts.Logger = logger
	opts.Metrics = metrics.NewEngineMetrics(prometheus.DefaultRegisterer)
	opts.ConversationLog = conversationLogger
	opts.Notifier = hub
	engine := session.NewEngine(collab, store.NewSessionStore(repo, logger), opts)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	api.NewHealthHandler(repo, 5*time.Second).RegisterHealth(r)
	api.NewSessionHandler(engine, middleware.RateLimit(limiter, identity.IPFromRequest)).RegisterRoutes(r)
	r.Method(http.MethodGet, "/ws/sessions/{id}", feed.NewHandler(hub, engine, cfg.WebSocketOrigins()))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// WriteTimeout stays 0 so feed connections are not cut off.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		slog.Info("Session sweeper started", "session_ttl", cfg.SessionTTL, "interval", cfg.SweepInterval)
		return store.RunSweeper(gctx, repo, store.SweepConfig{
			Interval: cfg.SweepInterval,
			TTL:      cfg.SessionTTL,
		}, func(sessionID string) { engine.Evict(sessionID) })
	})

	g.Go(func() error {
		return engine.RunJanitor(gctx, cfg.SweepInterval, cfg.SessionTTL)
	})

	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})

	return g.Wait()
}
