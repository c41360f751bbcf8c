// Package app assembles and runs the citebase server: configuration,
// logging, database pool, migrations, services and the HTTP API.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/citebase/internal/adapter/postgres"
	citationrepo "github.com/heartmarshall/citebase/internal/adapter/postgres/citation"
	"github.com/heartmarshall/citebase/internal/adapter/postgres/classification"
	"github.com/heartmarshall/citebase/internal/adapter/postgres/entrytype"
	"github.com/heartmarshall/citebase/internal/adapter/provider/doi"
	"github.com/heartmarshall/citebase/internal/config"
	"github.com/heartmarshall/citebase/internal/service/citation"
	"github.com/heartmarshall/citebase/internal/transport/rest"
	"github.com/heartmarshall/citebase/migrations"
)

// Run is the application entry point. It blocks until ctx is cancelled,
// then shuts the HTTP server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.MigrateOnStart {
		if err := Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	svc := buildService(logger, pool, cfg)

	citationHandler := rest.NewCitationHandler(svc, logger)
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())
	router := rest.NewRouter(logger, citationHandler, healthHandler, cfg.CORS)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// buildService wires the repositories and adapters into the citation service.
func buildService(logger *slog.Logger, pool postgres.DB, cfg *config.Config) *citation.Service {
	return citation.NewService(
		logger,
		citationrepo.New(pool),
		classification.New(pool, classification.Tags),
		classification.New(pool, classification.Categories),
		entrytype.New(pool),
		doi.NewProviderWithURL(cfg.DOI.BaseURL, logger),
		postgres.NewTxManager(pool),
	)
}

// Migrate applies the embedded goose migrations. goose requires a
// *sql.DB, so a short-lived stdlib connection is used.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
