package db

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"

	"treatment-booking/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies the embedded goose migrations the database has not
// recorded yet. Against an up-to-date schema it is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return withProvider(pool, func(p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			return errs.Wrap(err, "apply migrations")
		}
		for _, r := range results {
			slog.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
		}
		return nil
	})
}

// MigrationVersion reports the highest applied migration version.
func MigrationVersion(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	var version int64
	err := withProvider(pool, func(p *goose.Provider) error {
		v, err := p.GetDBVersion(ctx)
		version = v
		return err
	})
	return version, err
}

// withProvider borrows the pool through database/sql for the duration of fn.
func withProvider(pool *pgxpool.Pool, fn func(*goose.Provider) error) error {
	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return errs.Wrap(err, "open embedded migrations")
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(database.DialectPostgres, sqlDB, migrations)
	if err != nil {
		return errs.Wrap(err, "create migration provider")
	}
	return fn(provider)
}
