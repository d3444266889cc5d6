package sessionhandlers

import (
	"context"
	"log/slog"

	sessionservice "github.com/courtside-club/courtside/app/modules/session/application"
	sessionevents "github.com/courtside-club/courtside/app/modules/session/events"
	"github.com/courtside-club/courtside/pkg/handlerwrapper"
)

// HandlePlayerArrived records a (late) arrival and regenerates open rounds.
func (h *SessionHandlers) HandlePlayerArrived(
	ctx context.Context,
	payload *sessionevents.PlayerArrivedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandlePlayerArrived")
	}
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandlePlayerArrived")
	defer span.End()

	h.logger.InfoContext(ctx, "Player arrived",
		slog.String("session_id", payload.SessionID),
		slog.String("player_id", payload.PlayerID),
		slog.String("arrive_at", payload.ArriveAt),
	)

	loc, err := location(payload.Timezone)
	if err != nil {
		return h.failure(ctx, sessionevents.OperationPlayerArrived, payload.SessionID, err), nil
	}

	result, err := h.service.RecordArrival(ctx, sessionservice.ArrivalRequest{
		SessionID:   payload.SessionID,
		PlayerID:    payload.PlayerID,
		DisplayName: payload.DisplayName,
		Rating:      payload.Rating,
		ArriveAt:    payload.ArriveAt,
		LeaveAt:     payload.LeaveAt,
		Location:    loc,
		RequestedAt: payload.RequestedAt,
	})
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationPlayerArrived, payload.SessionID, result), nil
}

// HandlePlayerDeparted shortens a player's attendance.
func (h *SessionHandlers) HandlePlayerDeparted(
	ctx context.Context,
	payload *sessionevents.PlayerDepartedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandlePlayerDeparted")
	}
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandlePlayerDeparted")
	defer span.End()

	loc, err := location(payload.Timezone)
	if err != nil {
		return h.failure(ctx, sessionevents.OperationPlayerDeparted, payload.SessionID, err), nil
	}

	result, err := h.service.RecordDeparture(ctx, sessionservice.DepartureRequest{
		SessionID:   payload.SessionID,
		PlayerID:    payload.PlayerID,
		LeaveAt:     payload.LeaveAt,
		Location:    loc,
		RequestedAt: payload.RequestedAt,
	})
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationPlayerDeparted, payload.SessionID, result), nil
}

// HandleCourtAddRequested adds a court mid-session.
func (h *SessionHandlers) HandleCourtAddRequested(
	ctx context.Context,
	payload *sessionevents.CourtAddRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleCourtAddRequested")
	}

	result, err := h.service.AddCourt(ctx, payload.SessionID, courtRequest(payload.CourtPayloadV1))
	if err != nil {
		return nil, err
	}
	return h.scheduleResults(ctx, sessionevents.OperationAddCourt, payload.SessionID, result), nil
}
