package sessionmigrations

import (
	"context"
	"fmt"

	sessiondb "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating session tables...")

		models := []any{
			(*sessiondb.Session)(nil),
			(*sessiondb.Player)(nil),
			(*sessiondb.Attendance)(nil),
			(*sessiondb.Court)(nil),
			(*sessiondb.Schedule)(nil),
		}
		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}

		fmt.Println("Session tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back session tables...")

		models := []any{
			(*sessiondb.Schedule)(nil),
			(*sessiondb.Court)(nil),
			(*sessiondb.Attendance)(nil),
			(*sessiondb.Player)(nil),
			(*sessiondb.Session)(nil),
		}
		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table for %T: %w", model, err)
			}
		}

		fmt.Println("Session tables dropped successfully!")
		return nil
	})
}
