package sessionhandlers

import (
	"context"
	"log/slog"

	sessionevents "github.com/courtside-club/courtside/app/modules/session/events"
	"github.com/courtside-club/courtside/pkg/eventbus"
	"github.com/courtside-club/courtside/pkg/handlerwrapper"
)

// HandleSessionFinishRequested closes the session and announces its summary.
func (h *SessionHandlers) HandleSessionFinishRequested(
	ctx context.Context,
	payload *sessionevents.SessionRequestPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleSessionFinishRequested")
	}
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandleSessionFinishRequested")
	defer span.End()

	result, err := h.service.FinishSession(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if result.Failure != nil {
		return h.failure(ctx, sessionevents.OperationFinish, payload.SessionID, *result.Failure), nil
	}
	if result.Success == nil {
		return nil, nil
	}

	finished := *result.Success
	h.logger.InfoContext(ctx, "Session finished",
		slog.String("session_id", finished.SessionID),
		slog.Int("scored_matches", finished.Summary.ScoredMatches),
	)
	return []handlerwrapper.Result{{
		Topic: eventbus.FormatSessionScopedTopic(sessionevents.SessionFinishedV1, finished.SessionID),
		Payload: &sessionevents.SessionFinishedPayloadV1{
			SessionID:  finished.SessionID,
			FinishedAt: finished.FinishedAt,
			Summary:    sessionevents.FromSummary(finished.SessionID, finished.Summary),
		},
	}}, nil
}

// HandleSessionSummaryRequested answers with the standings so far.
func (h *SessionHandlers) HandleSessionSummaryRequested(
	ctx context.Context,
	payload *sessionevents.SessionRequestPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleSessionSummaryRequested")
	}

	result, err := h.service.GetSummary(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if result.Failure != nil {
		return h.failure(ctx, sessionevents.OperationSummary, payload.SessionID, *result.Failure), nil
	}
	if result.Success == nil {
		return nil, nil
	}

	summary := sessionevents.FromSummary(payload.SessionID, **result.Success)
	return []handlerwrapper.Result{{
		Topic:   replyTopic(ctx, sessionevents.SessionSummaryV1, payload.SessionID),
		Payload: &summary,
	}}, nil
}
