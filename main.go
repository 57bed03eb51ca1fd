// Package main is the entry point for the workshop merchant API server.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"

	"workshop/src/app/server"
	"workshop/src/infra/config"
	"workshop/src/infra/db"
	"workshop/src/infra/dispatch"
	"workshop/src/infra/logger"
	"workshop/src/infra/repo"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
	)

	ctx := context.Background()

	pg, err := db.New(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pg.Close()

	if cfg.Database.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
	}

	workshopRepo := repo.NewWorkshopRepository(pg, logger.WithComponent(log, "repo"))
	dispatcher := dispatch.New(cfg.Dispatch, logger.WithComponent(log, "dispatch"))

	srv := server.New(cfg, log, workshopRepo, dispatcher)

	// Run blocks until a shutdown signal is received.
	return srv.Run()
}
