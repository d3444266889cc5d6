package sessionhandlers

import (
	"context"

	sessionevents "github.com/courtside-club/courtside/app/modules/session/events"
	"github.com/courtside-club/courtside/pkg/handlerwrapper"
)

// HandleScheduleGenerateRequested builds a full schedule for the session.
func (h *SessionHandlers) HandleScheduleGenerateRequested(
	ctx context.Context,
	payload *sessionevents.SessionRequestPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleScheduleGenerateRequested")
	}
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandleScheduleGenerateRequested")
	defer span.End()

	if rejected, limited := h.throttled(ctx, sessionevents.ScheduleGenerateRequestedV1, sessionevents.OperationGenerate, payload.SessionID); limited {
		return rejected, nil
	}

	result, err := h.service.GenerateSchedule(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationGenerate, payload.SessionID, result), nil
}

// HandleScheduleRegenerateRequested rebuilds the open rounds.
func (h *SessionHandlers) HandleScheduleRegenerateRequested(
	ctx context.Context,
	payload *sessionevents.SessionRequestPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleScheduleRegenerateRequested")
	}
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandleScheduleRegenerateRequested")
	defer span.End()

	if rejected, limited := h.throttled(ctx, sessionevents.ScheduleRegenerateRequestedV1, sessionevents.OperationRegenerate, payload.SessionID); limited {
		return rejected, nil
	}

	result, err := h.service.RegenerateRemaining(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationRegenerate, payload.SessionID, result), nil
}

// HandleScheduleRetrieveRequested answers with the stored schedule, on the
// reply subject when one is set.
func (h *SessionHandlers) HandleScheduleRetrieveRequested(
	ctx context.Context,
	payload *sessionevents.SessionRequestPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleScheduleRetrieveRequested")
	}

	result, err := h.service.GetSchedule(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if result.Failure != nil {
		return h.failure(ctx, sessionevents.OperationRetrieve, payload.SessionID, *result.Failure), nil
	}
	if result.Success == nil {
		return nil, nil
	}

	return []handlerwrapper.Result{{
		Topic: replyTopic(ctx, sessionevents.ScheduleUpdatedV1, payload.SessionID),
		Payload: &sessionevents.ScheduleUpdatedPayloadV1{
			Operation: sessionevents.OperationRetrieve,
			Schedule:  sessionevents.FromSchedule(*result.Success),
		},
	}}, nil
}
