package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mealplanner/internal/api"
	"mealplanner/internal/config"
	"mealplanner/internal/platform/cache"
	"mealplanner/internal/platform/gemini"
	"mealplanner/internal/platform/localllm"
	"mealplanner/internal/platform/logger"
	"mealplanner/internal/platform/metrics"
	"mealplanner/internal/store"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the optional JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// The logger is configured from cfg, so fall back to a default one here.
		bootLog, _ := logger.New("development")
		bootLog.Fatal("Failed to load configuration", "error", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	backend, err := newBackend(cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", "error", err)
	}
	s := store.New(backend, store.WithMetrics(m))
	defer s.Close()

	generator, closeGenerator, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create recipe generator", "provider", cfg.AIProvider, "error", err)
	}
	defer closeGenerator()

	genCache := newCache(ctx, cfg, log)
	defer genCache.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(s, generator, log)
	handler.Provider = cfg.AIProvider
	handler.Cache = genCache
	handler.CacheTTL = cfg.GenerationCacheTTL
	handler.Metrics = m
	handler.Production = cfg.IsProduction()

	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		SessionSecret:  cfg.SessionSecret,
		Gatherer:       reg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server", "addr", srv.Addr, "env", cfg.Env, "provider", cfg.AIProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}

func newBackend(cfg *config.Config, log *logger.Logger) (store.Backend, error) {
	if cfg.DatabaseURL != "" {
		log.Info("Using Postgres document store")
		return store.NewPostgresBackend(cfg.DatabaseURL)
	}
	fb := store.NewFileBackend(cfg.DataPath)
	log.Info("Using JSON file store", "path", fb.Path())
	return fb, nil
}

func newGenerator(ctx context.Context, cfg *config.Config) (api.RecipeGenerator, func(), error) {
	switch cfg.AIProvider {
	case config.ProviderLocal:
		return localllm.NewClient(cfg.LocalLLMURL, cfg.LocalLLMModel), func() {}, nil
	default:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	}
}

// newCache prefers Redis when configured and falls back to memory if it
// cannot be reached.
func newCache(ctx context.Context, cfg *config.Config, log *logger.Logger) cache.Cache {
	if cfg.RedisURL == "" {
		return cache.NewMemory()
	}
	rc, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory generation cache", "error", err)
		return cache.NewMemory()
	}
	return rc
}
