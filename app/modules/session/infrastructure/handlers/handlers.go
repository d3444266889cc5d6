package sessionhandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	sessionmetrics "github.com/courtside-club/courtside/app/metrics/session"
	sessionservice "github.com/courtside-club/courtside/app/modules/session/application"
	sessionevents "github.com/courtside-club/courtside/app/modules/session/events"
	"github.com/courtside-club/courtside/pkg/eventbus"
	"github.com/courtside-club/courtside/pkg/handlerwrapper"
)

// SessionHandlers implements the Handlers interface.
type SessionHandlers struct {
	service sessionservice.Service
	limiter *SessionRateLimiter
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics sessionmetrics.SessionMetrics
}

// NewSessionHandlers creates a new SessionHandlers instance. limiter may be
// nil to disable throttling of generate and regenerate requests.
func NewSessionHandlers(
	service sessionservice.Service,
	limiter *SessionRateLimiter,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics sessionmetrics.SessionMetrics,
) Handlers {
	return &SessionHandlers{
		service: service,
		limiter: limiter,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}

// throttled reports whether the session exceeded its request budget and
// builds the rejection when it did.
func (h *SessionHandlers) throttled(ctx context.Context, topic, operation, sessionID string) ([]handlerwrapper.Result, bool) {
	if h.limiter.Allow(sessionID) {
		return nil, false
	}
	h.metrics.RecordRateLimited(ctx, topic)
	return h.failure(ctx, operation, sessionID, sessionservice.ErrRateLimited), true
}

// scheduleResults maps a schedule operation to its outgoing event. A
// successful operation that produced no schedule publishes nothing.
func (h *SessionHandlers) scheduleResults(
	ctx context.Context,
	operation string,
	sessionID string,
	result sessionservice.ScheduleResult,
) []handlerwrapper.Result {
	if result.Failure != nil {
		return h.failure(ctx, operation, sessionID, *result.Failure)
	}
	if result.Success == nil || *result.Success == nil {
		h.logger.InfoContext(ctx, "No schedule to publish",
			slog.String("operation", operation),
			slog.String("session_id", sessionID),
		)
		return nil
	}

	return []handlerwrapper.Result{{
		Topic: eventbus.FormatSessionScopedTopic(sessionevents.ScheduleUpdatedV1, sessionID),
		Payload: &sessionevents.ScheduleUpdatedPayloadV1{
			Operation: operation,
			Schedule:  sessionevents.FromSchedule(*result.Success),
		},
	}}
}

// failure builds the failure event for a rejected request. It goes to the
// requester when a reply subject is present.
func (h *SessionHandlers) failure(ctx context.Context, operation, sessionID string, err error) []handlerwrapper.Result {
	code := sessionservice.ErrorCode(err)
	h.logger.WarnContext(ctx, "Session request rejected",
		slog.String("operation", operation),
		slog.String("session_id", sessionID),
		slog.String("code", code),
		slog.String("error", err.Error()),
	)
	return []handlerwrapper.Result{{
		Topic: replyTopic(ctx, sessionevents.ScheduleFailedV1, sessionID),
		Payload: &sessionevents.ScheduleFailedPayloadV1{
			SessionID: sessionID,
			Operation: operation,
			Code:      code,
			Message:   err.Error(),
		},
	}}
}

// replyTopic returns the reply subject when the request carried one and
// the session-scoped topic otherwise.
func replyTopic(ctx context.Context, baseTopic, sessionID string) string {
	if rt, ok := ctx.Value(handlerwrapper.CtxKeyReplyTo).(string); ok && rt != "" {
		return rt
	}
	return eventbus.FormatSessionScopedTopic(baseTopic, sessionID)
}

// missingSession logs and drops requests without a session id; there is
// no scoped topic to answer on.
func (h *SessionHandlers) missingSession(ctx context.Context, handlerName string) ([]handlerwrapper.Result, error) {
	h.logger.WarnContext(ctx, "Dropping request without session id",
		slog.String("handler", handlerName),
	)
	return nil, nil
}

// location resolves an IANA timezone name. Empty means UTC.
func location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", sessionservice.ErrInvalidRequest, name)
	}
	return loc, nil
}
