package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claude/wodgen/internal/config"
)

// ApplicationName tags audit log connections in pg_stat_activity.
const ApplicationName = "wodgen"

// DB is the generation audit log backed by a pgx pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New connects to the audit log database described by cfg.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s: %w", cfg.Name, err)
	}
	return &DB{Pool: pool}, nil
}

func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	return pc, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations brings the generation_logs schema up to date and returns
// the resulting schema version.
func RunMigrations(cfg config.DatabaseConfig, migrationsPath string, log *slog.Logger) (uint, error) {
	m, err := migrate.New("file://"+migrationsPath, cfg.DSN())
	if err != nil {
		return 0, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug("audit log schema already current")
	case err != nil:
		return 0, fmt.Errorf("running migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("reading migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("audit log schema version %d is dirty", version)
	}
	log.Info("audit log schema ready", "version", version, "database", cfg.Name)
	return version, nil
}
