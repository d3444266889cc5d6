package sessionqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/riverqueue/river"

	sessionevents "github.com/courtside-club/courtside/app/modules/session/events"
	"github.com/courtside-club/courtside/pkg/eventbus"
)

// SessionFinishWorker turns a due SessionFinishJob into a finish request.
type SessionFinishWorker struct {
	river.WorkerDefaults[SessionFinishJob]
	logger   *slog.Logger
	eventBus eventbus.EventBus
}

func NewSessionFinishWorker(logger *slog.Logger, eventBus eventbus.EventBus) *SessionFinishWorker {
	return &SessionFinishWorker{
		logger:   logger,
		eventBus: eventBus,
	}
}

// Work publishes SessionFinishRequestedV1 for the job's session. A publish
// error is returned so River retries the job.
func (w *SessionFinishWorker) Work(ctx context.Context, job *river.Job[SessionFinishJob]) error {
	sessionID := job.Args.SessionID
	if sessionID == "" {
		w.logger.WarnContext(ctx, "Discarding finish job without session id")
		return nil
	}

	body, err := json.Marshal(sessionevents.SessionRequestPayloadV1{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("failed to marshal finish request: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID(watermill.NewUUID(), msg)

	if err := w.eventBus.Publish(sessionevents.SessionFinishRequestedV1, msg); err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish finish request",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to publish finish request: %w", err)
	}

	w.logger.InfoContext(ctx, "Published session finish request",
		slog.String("session_id", sessionID),
	)
	return nil
}
