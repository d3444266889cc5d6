package sessionmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding session indexes and constraints...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			stmts := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_session_courts_position ON session_courts (session_id, position);`,
				`CREATE INDEX IF NOT EXISTS idx_sessions_open_end_time ON sessions (end_time) WHERE finished_at IS NULL;`,
				`ALTER TABLE session_courts DROP CONSTRAINT IF EXISTS chk_session_courts_window;`,
				`ALTER TABLE session_courts ADD CONSTRAINT chk_session_courts_window CHECK (start_time < end_time);`,
				`ALTER TABLE sessions DROP CONSTRAINT IF EXISTS chk_sessions_window;`,
				`ALTER TABLE sessions ADD CONSTRAINT chk_sessions_window CHECK (start_time < end_time AND round_minutes > 0);`,
			}
			for _, stmt := range stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to run %q: %w", stmt, err)
				}
			}
			fmt.Println("Session indexes and constraints added.")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing session indexes and constraints...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			stmts := []string{
				`ALTER TABLE sessions DROP CONSTRAINT IF EXISTS chk_sessions_window;`,
				`ALTER TABLE session_courts DROP CONSTRAINT IF EXISTS chk_session_courts_window;`,
				`DROP INDEX IF EXISTS idx_sessions_open_end_time;`,
				`DROP INDEX IF EXISTS idx_session_courts_position;`,
			}
			for _, stmt := range stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to run %q: %w", stmt, err)
				}
			}
			return nil
		})
	})
}
