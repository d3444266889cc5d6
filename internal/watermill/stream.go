package watermillutil

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// EnsureStream creates or updates the JetStream stream that records the
// configured subjects.
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg Config) error {
	if cfg.StreamName == "" {
		return nil
	}
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: cfg.StreamSubjects,
		MaxAge:   cfg.StreamMaxAge,
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to provision stream %s: %w", cfg.StreamName, err)
	}
	return nil
}
