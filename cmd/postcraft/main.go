// Package main is the entry point for the postcraft API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postcraft/internal/ai"
	"postcraft/internal/cache"
	"postcraft/internal/config"
	"postcraft/internal/database"
	"postcraft/internal/export"
	"postcraft/internal/fetch"
	"postcraft/internal/generate"
	"postcraft/internal/handlers"
	"postcraft/internal/imaging"
	"postcraft/internal/prompt"
	"postcraft/internal/router"
	"postcraft/internal/session"
	"postcraft/internal/storage"
	"postcraft/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL and run pending migrations.
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(connectCtx, cfg.DSN(), database.DefaultPool)
	cancelConnect()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Give the development owner starter prompts (no-op if present).
	devOwner := ""
	if cfg.Env != "production" {
		devOwner = cfg.DevOwnerID
	}
	if err := database.Seed(db, devOwner); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Valkey holds sessions and the L2 style cache.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	valkeyClient, err := cache.ConnectValkey(pingCtx, cache.ValkeyConfig{
		Host:     cfg.ValkeyHost,
		Port:     cfg.ValkeyPort,
		Password: cfg.ValkeyPassword,
	})
	cancelPing()
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	sessionStore := session.NewStore(valkeyClient, !cfg.IsDev())
	styleCache := cache.NewStyleCache(valkeyClient, cfg.StyleCacheTTL)

	// S3-compatible object storage is optional: without it images are
	// returned inline and exports are sent as attachments.
	var storageClient *storage.Client
	if cfg.StorageEnabled() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3BucketPublic, cfg.S3BucketPrivate, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"public_bucket", cfg.S3BucketPublic,
			"private_bucket", cfg.S3BucketPrivate,
		)
	} else {
		slog.Warn("s3 storage not configured, images inline and exports as attachments")
	}

	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini":  {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, ModelImage: cfg.GeminiImage, BaseURL: cfg.GeminiBaseURL},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})
	aiRegistry.SetRateLimit(cfg.AIRateLimit, max(1, int(cfg.AIRateLimit)))

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
		"url_context", aiRegistry.SupportsURLContext(),
		"images", aiRegistry.SupportsImageGeneration(),
	)

	builder := prompt.NewBuilder(aiRegistry, prompt.Config{
		SummarizeThreshold:   cfg.SummarizeThreshold,
		StyleSampleThreshold: cfg.StyleSampleThreshold,
	}, styleCache)

	genOpts := []generate.Option{
		generate.WithFetcher(fetch.NewReader(cfg.FetchTimeout)),
		generate.WithSlideCount(cfg.SlideCount),
	}
	if storageClient != nil {
		genOpts = append(genOpts, generate.WithImageStore(storageClient))
	}
	generator := generate.New(aiRegistry, builder, genOpts...)

	// Slide images come from anonymous requests: remote references may only
	// reach public addresses.
	renderer, err := imaging.NewRenderer(cfg.RenderScale, imaging.NewLoader(imaging.PublicClient()))
	if err != nil {
		slog.Error("failed to initialize slide renderer", "error", err)
		os.Exit(1)
	}
	exporter := export.New(renderer, export.WithSettleDelay(cfg.ExportSettle))

	deps := handlers.Deps{
		Generator: generator,
		Results:   store.NewResultStore(db),
		Memories:  store.NewMemoryStore(db),
		Prompts:   store.NewPromptStore(db),
		Moderator: aiRegistry,
		Exporter:  exporter,
		Sessions:  sessionStore,
	}
	if storageClient != nil {
		deps.Uploads = storageClient
		deps.ExportTTL = cfg.ExportURLTTL
	}
	api := handlers.NewAPI(deps)

	r := router.New(api, router.Options{
		Owners:        sessionStore,
		DevOwner:      devOwner,
		GenerateLimit: cfg.RateLimitPerMinute,
		Timeout:       cfg.RequestTimeout,
	})

	// WriteTimeout must accommodate generation endpoints that wait on
	// several model calls and carousel exports that render every slide.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

