package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	sessionmigrations "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories/migrations"
	"github.com/courtside-club/courtside/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN))), pgdialect.New())
	defer db.Close()

	cliApp := &cli.App{
		Name:  "bun",
		Usage: "courtside schema tool",
		Commands: []*cli.Command{
			newSessionCommand(migrate.NewMigrator(db, sessionmigrations.Migrations)),
			newRiverCommand(cfg.Postgres.DSN),
		},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

// newSessionCommand manages the session tables.
func newSessionCommand(migrator *migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "session schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "create the bookkeeping tables and apply pending migrations",
				Action: func(c *cli.Context) error {
					if err := migrator.Init(c.Context); err != nil {
						return fmt.Errorf("failed to init migrations: %w", err)
					}
					group, err := migrator.Migrate(c.Context)
					if err != nil {
						return fmt.Errorf("failed to migrate: %w", err)
					}
					if group.IsZero() {
						fmt.Println("Session schema is up to date")
						return nil
					}
					fmt.Printf("Session schema migrated to %s\n", group)
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					group, err := migrator.Rollback(c.Context)
					if err != nil {
						return fmt.Errorf("failed to roll back: %w", err)
					}
					if group.IsZero() {
						fmt.Println("Nothing to roll back")
						return nil
					}
					fmt.Printf("Rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "list unapplied migrations",
				Action: func(c *cli.Context) error {
					ms, err := migrator.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("Applied: %s\nPending: %s\n", ms.Applied(), ms.Unapplied())
					return nil
				},
			},
		},
	}
}

// newRiverCommand applies or reverts the job queue schema.
func newRiverCommand(dsn string) *cli.Command {
	run := func(c *cli.Context, direction rivermigrate.Direction) error {
		pool, err := pgxpool.New(c.Context, dsn)
		if err != nil {
			return fmt.Errorf("failed to create pgx pool: %w", err)
		}
		defer pool.Close()

		migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
		if err != nil {
			return fmt.Errorf("failed to create River migrator: %w", err)
		}
		opts := &rivermigrate.MigrateOpts{}
		if direction == rivermigrate.DirectionDown {
			opts.MaxSteps = 1
		}
		res, err := migrator.Migrate(c.Context, direction, opts)
		if err != nil {
			return err
		}
		if len(res.Versions) == 0 {
			fmt.Println("No River migrations to apply")
		}
		for _, v := range res.Versions {
			fmt.Printf("River migration %s: version %d\n", direction, v.Version)
		}
		return nil
	}

	return &cli.Command{
		Name:  "river",
		Usage: "job queue migrations",
		Subcommands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply River migrations",
				Action: func(c *cli.Context) error { return run(c, rivermigrate.DirectionUp) },
			},
			{
				Name:   "down",
				Usage:  "revert the last River migration",
				Action: func(c *cli.Context) error { return run(c, rivermigrate.DirectionDown) },
			},
		},
	}
}
