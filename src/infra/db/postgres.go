package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"workshop/src/infra/config"
)

const (
	applicationName = "workshop-merchant"
	healthTimeout   = 2 * time.Second
)

// Postgres owns the pgx pool backing the workshop tables.
type Postgres struct {
	Pool *pgxpool.Pool
	log  *slog.Logger
}

// New opens the pool and fails fast if the database cannot be reached.
func New(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	log.Info("workshop database ready",
		"host", cfg.Host,
		"database", cfg.Name,
		"max_conns", poolCfg.MaxConns,
	)

	return &Postgres{Pool: pool, log: log}, nil
}

// Close releases every pooled connection.
func (p *Postgres) Close() {
	if p.Pool == nil {
		return
	}
	p.Pool.Close()
	p.log.Info("workshop database closed")
}

// Health pings the database, bounded so a hung server cannot stall the
// health endpoint.
func (p *Postgres) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := p.Pool.Ping(ctx); err != nil {
		stat := p.Pool.Stat()
		p.log.Warn("database ping failed",
			"total_conns", stat.TotalConns(),
			"idle_conns", stat.IdleConns(),
			"error", err,
		)
		return err
	}
	return nil
}
