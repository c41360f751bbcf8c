// Command seed applies migrations and loads the embedded demo library.
// It is intended for local development and demos, not production.
//
// Flags:
//
//	--skip-migrate  do not run migrations before seeding
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/citebase/internal/adapter/postgres"
	citationrepo "github.com/heartmarshall/citebase/internal/adapter/postgres/citation"
	"github.com/heartmarshall/citebase/internal/adapter/postgres/classification"
	"github.com/heartmarshall/citebase/internal/adapter/postgres/entrytype"
	"github.com/heartmarshall/citebase/internal/adapter/provider/doi"
	"github.com/heartmarshall/citebase/internal/app"
	"github.com/heartmarshall/citebase/internal/config"
	"github.com/heartmarshall/citebase/internal/seeder"
	"github.com/heartmarshall/citebase/internal/service/citation"
)

func main() {
	skipMigrate := flag.Bool("skip-migrate", false, "do not run migrations before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if !*skipMigrate {
		if err := app.Migrate(ctx, cfg.Database.DSN); err != nil {
			logger.Error("migrate", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := citation.NewService(
		logger,
		citationrepo.New(pool),
		classification.New(pool, classification.Tags),
		classification.New(pool, classification.Categories),
		entrytype.New(pool),
		doi.NewProviderWithURL(cfg.DOI.BaseURL, logger),
		postgres.NewTxManager(pool),
	)

	if err := seeder.New(logger, svc).Run(ctx); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
