package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Start serves the ops endpoints on addr until ctx is cancelled.
func (app *App) Start(ctx context.Context, addr string) error {
	checks := map[string]ReadinessCheck{
		"postgres": app.DB.PingContext,
		"nats":     func(context.Context) error { return app.PubSub.Healthy() },
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewOpsRouter(checks, app.Registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.InfoContext(ctx, "Starting ops server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
