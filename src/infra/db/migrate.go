package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate applies every pending migration embedded in the binary.
func (p *Postgres) Migrate(ctx context.Context) error {
	provider, err := newMigrationProvider(p)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		p.log.Info("migration applied",
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration", r.Duration,
		)
	}
	return nil
}

func newMigrationProvider(p *Postgres) (*goose.Provider, error) {
	sqlDB := stdlib.OpenDBFromPool(p.Pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrationFS())
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// migrationFS returns the embedded migrations rooted at the migrations directory.
func migrationFS() fs.FS {
	sub, err := fs.Sub(migrations, migrationsDir)
	if err != nil {
		panic(err)
	}
	return sub
}
