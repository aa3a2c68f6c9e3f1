package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect/builtin"
	"github.com/queryforge-io/queryforge-engine/pkg/config"
	"github.com/queryforge-io/queryforge-engine/pkg/database"
	"github.com/queryforge-io/queryforge-engine/pkg/handlers"
	"github.com/queryforge-io/queryforge-engine/pkg/llm"
	"github.com/queryforge-io/queryforge-engine/pkg/middleware"
	"github.com/queryforge-io/queryforge-engine/pkg/repositories"
	"github.com/queryforge-io/queryforge-engine/pkg/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// Bring the metadata store up to date before anything opens it.
	if err := database.RunMigrations(ctx, cfg.Store.Path, logger); err != nil {
		return err
	}

	store, err := database.Open(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	registry, err := builtin.NewRegistry()
	if err != nil {
		return err
	}
	factory := dialect.NewFactory(registry, logger)
	manager := dialect.NewConnectionManager(factory, logger)
	defer func() {
		if err := manager.CloseAll(); err != nil {
			logger.Warn("Failed to close cached engines", zap.Error(err))
		}
	}()

	conns := repositories.NewConnectionRepository(store)
	tables := repositories.NewTableMetadataRepository(store)
	columns := repositories.NewColumnMetadataRepository(store)

	metadata := services.NewMetadataService(factory, manager, tables, columns, logger)
	connections := services.NewConnectionService(conns, factory, manager, metadata, cfg.Query.ConnectTimeout, logger)
	queries := services.NewQueryService(factory, manager, cfg.Query.ExecTimeout, logger)

	var nlClient llm.Client
	if cfg.NL.IsConfigured() {
		nlClient, err = llm.NewClient(&llm.Config{
			Provider:    cfg.NL.Provider,
			Endpoint:    cfg.NL.Endpoint,
			Model:       cfg.NL.Model,
			APIKey:      cfg.NL.APIKey,
			Temperature: cfg.NL.Temperature,
		}, logger)
		if err != nil {
			return err
		}
		logger.Info("Natural language querying enabled",
			zap.String("provider", cfg.NL.Provider),
			zap.String("model", cfg.NL.Model))
	} else {
		logger.Info("Natural language querying disabled, no API key configured")
	}
	nl := services.NewNLQueryService(nlClient, factory, metadata, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDatabasesHandler(connections, registry, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(connections, queries, nl, logger).RegisterRoutes(mux)

	handler := middleware.RequestID()(middleware.RequestLogger(logger)(mux))

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting queryforge-engine",
			zap.String("addr", cfg.Addr()),
			zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
