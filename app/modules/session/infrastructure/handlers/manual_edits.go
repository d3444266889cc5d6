package sessionhandlers

import (
	"context"

	sessionservice "github.com/courtside-club/courtside/app/modules/session/application"
	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	sessionevents "github.com/courtside-club/courtside/app/modules/session/events"
	"github.com/courtside-club/courtside/pkg/handlerwrapper"
)

// HandleManualMatchRequested inserts a hand-picked match.
func (h *SessionHandlers) HandleManualMatchRequested(
	ctx context.Context,
	payload *sessionevents.ManualMatchRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleManualMatchRequested")
	}
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandleManualMatchRequested")
	defer span.End()

	roundIndex := scheduler.NextAvailableRound
	if payload.RoundIndex != nil {
		roundIndex = *payload.RoundIndex
	}

	result, err := h.service.InsertManualMatch(ctx, payload.SessionID, sessionservice.ManualMatchRequest{
		RoundIndex: roundIndex,
		CourtID:    payload.CourtID,
		TeamA:      payload.TeamA,
		TeamB:      payload.TeamB,
	})
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationManualMatch, payload.SessionID, result), nil
}

// HandleManualSwapRequested replaces one player of an assignment.
func (h *SessionHandlers) HandleManualSwapRequested(
	ctx context.Context,
	payload *sessionevents.ManualSwapRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleManualSwapRequested")
	}
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandleManualSwapRequested")
	defer span.End()

	result, err := h.service.SwapPlayer(ctx, payload.SessionID, sessionservice.SwapRequest{
		RoundIndex:   payload.RoundIndex,
		AssignmentID: payload.AssignmentID,
		PlayerOut:    payload.PlayerOut,
		PlayerIn:     payload.PlayerIn,
	})
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationManualSwap, payload.SessionID, result), nil
}

// HandleScoreRequested records a match result.
func (h *SessionHandlers) HandleScoreRequested(
	ctx context.Context,
	payload *sessionevents.ScoreRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleScoreRequested")
	}
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandleScoreRequested")
	defer span.End()

	teamA, err := payload.TeamAScore.Int()
	if err != nil {
		return h.failure(ctx, sessionevents.OperationScore, payload.SessionID, err), nil
	}
	teamB, err := payload.TeamBScore.Int()
	if err != nil {
		return h.failure(ctx, sessionevents.OperationScore, payload.SessionID, err), nil
	}

	result, err := h.service.RecordScore(ctx, payload.SessionID, payload.AssignmentID, teamA, teamB)
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationScore, payload.SessionID, result), nil
}

// HandleAssignmentDeleteRequested removes one match.
func (h *SessionHandlers) HandleAssignmentDeleteRequested(
	ctx context.Context,
	payload *sessionevents.AssignmentDeleteRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleAssignmentDeleteRequested")
	}

	result, err := h.service.DeleteAssignment(ctx, payload.SessionID, payload.AssignmentID)
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationDeleteAssignment, payload.SessionID, result), nil
}

// HandleRoundDeleteRequested clears a round.
func (h *SessionHandlers) HandleRoundDeleteRequested(
	ctx context.Context,
	payload *sessionevents.RoundDeleteRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleRoundDeleteRequested")
	}

	result, err := h.service.DeleteRound(ctx, payload.SessionID, payload.RoundIndex)
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationDeleteRound, payload.SessionID, result), nil
}
