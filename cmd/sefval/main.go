// Command sefval runs the SEF validation engine, either as an HTTP service
// or as a one-shot run over a configured workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"sefval/adapters/api"
	"sefval/adapters/excel"
	"sefval/adapters/postgres"
	"sefval/adapters/rng"
	"sefval/app"
	"sefval/internal/config"
	"sefval/ports"
)

func main() {
	serve := flag.Bool("serve", false, "start the HTTP API instead of a one-shot run")
	flag.Parse()

	// .env is optional; real deployments use the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("[Main] loaded configuration from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] configuration error: %v", err)
	}

	service, err := app.NewValidationService(cfg.Engine, rng.New())
	if err != nil {
		log.Fatalf("[Main] failed to build validation service: %v", err)
	}

	reports, cleanup, err := setupReports(cfg)
	if err != nil {
		log.Fatalf("[Main] failed to set up report store: %v", err)
	}
	defer cleanup()

	var source ports.SampleSource
	if cfg.Data.WorkbookFile != "" {
		source = excel.NewWorkbookSource(cfg.Data)
	}

	if *serve {
		server := api.NewServer(service, reports, source, cfg.Server.GinMode)
		if err := server.Run(":" + cfg.Server.Port); err != nil {
			log.Fatalf("[Main] server failed: %v", err)
		}
		return
	}

	if err := runOnce(service, reports, source); err != nil {
		log.Fatalf("[Main] run failed: %v", err)
	}
}

// setupReports connects the PostgreSQL report store when DATABASE_URL is
// configured. Without it reports are printed but not persisted.
func setupReports(cfg *config.Config) (ports.ReportRepository, func(), error) {
	if cfg.Database.URL == "" {
		log.Println("[Main] no DATABASE_URL configured, reports will not be persisted")
		return nil, func() {}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}

	repo := postgres.NewReportRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if impl, ok := repo.(*postgres.ReportRepositoryImpl); ok {
		if err := impl.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return repo, func() { db.Close() }, nil
}

// runOnce validates the configured workbook once and prints the summary.
func runOnce(service *app.ValidationService, reports ports.ReportRepository, source ports.SampleSource) error {
	if source == nil {
		return fmt.Errorf("one-shot runs need WORKBOOK_FILE configured")
	}

	ctx := context.Background()
	samples, err := source.Samples(ctx)
	if err != nil {
		return err
	}

	rep, err := service.Run(ctx, app.ValidationRequest{Samples: samples})
	if err != nil {
		return err
	}

	if reports != nil {
		if err := reports.Save(ctx, rep); err != nil {
			log.Printf("[Main] failed to persist report %s: %v", rep.ID, err)
		}
	}

	fmt.Fprintln(os.Stdout, api.RenderMarkdown(rep))
	return nil
}
