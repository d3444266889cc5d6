//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	sessionmigrations "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories/migrations"
)

// sessionTables lists the application tables truncated between tests.
var sessionTables = []string{"session_schedules", "session_courts", "session_attendance", "session_players", "sessions"}

// OpenMigratedDB connects to dsn and applies the River and session migrations.
func OpenMigratedDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := runRiverMigrations(ctx, dsn); err != nil {
		db.Close()
		return nil, err
	}

	migrator := migrate.NewMigrator(db, sessionmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run session migrations: %w", err)
	}
	log.Printf("Ran session migrations group #%d", group.ID)
	return db, nil
}

func runRiverMigrations(ctx context.Context, dsn string) error {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN for River migrations: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// CleanupDatabase truncates the session tables.
func CleanupDatabase(ctx context.Context, db bun.IDB) error {
	for _, table := range sessionTables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
