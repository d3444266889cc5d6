package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Module is a unit of the application with its own handlers and lifecycle.
type Module interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
	Close() error
}

// newMessageRouter creates the watermill router shared by all modules.
// Handler errors are retried with backoff before the message is nacked.
func newMessageRouter(logger *slog.Logger) (*message.Router, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)
	return router, nil
}
