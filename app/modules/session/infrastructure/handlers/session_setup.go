package sessionhandlers

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	sessionservice "github.com/courtside-club/courtside/app/modules/session/application"
	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	sessionevents "github.com/courtside-club/courtside/app/modules/session/events"
	"github.com/courtside-club/courtside/pkg/eventbus"
	"github.com/courtside-club/courtside/pkg/handlerwrapper"
)

// HandleSessionCreateRequested creates a session with its roster and courts.
func (h *SessionHandlers) HandleSessionCreateRequested(
	ctx context.Context,
	payload *sessionevents.SessionCreateRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandleSessionCreateRequested")
	defer span.End()

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	req := sessionservice.CreateSessionRequest{
		SessionID:    sessionID,
		Name:         payload.Name,
		Start:        payload.StartTime,
		End:          payload.EndTime,
		RoundMinutes: payload.RoundMinutes,
		RatingScale:  scheduler.RatingScale(payload.RatingScale),
		Players:      make([]sessionservice.PlayerInput, 0, len(payload.Players)),
		Courts:       make([]sessionservice.CourtRequest, 0, len(payload.Courts)),
	}
	for _, p := range payload.Players {
		active := true
		if p.Active != nil {
			active = *p.Active
		}
		req.Players = append(req.Players, sessionservice.PlayerInput{
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			Rating:      p.Rating,
			Active:      active,
		})
	}
	for _, c := range payload.Courts {
		req.Courts = append(req.Courts, courtRequest(c))
	}

	result, err := h.service.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.Failure != nil {
		return h.failure(ctx, sessionevents.OperationCreateSession, sessionID, *result.Failure), nil
	}
	if result.Success == nil {
		return nil, nil
	}

	info := *result.Success
	h.logger.InfoContext(ctx, "Session created",
		slog.String("session_id", info.SessionID),
		slog.Int("players", info.Players),
		slog.Int("courts", info.Courts),
	)
	return []handlerwrapper.Result{{
		Topic: eventbus.FormatSessionScopedTopic(sessionevents.SessionCreatedV1, info.SessionID),
		Payload: &sessionevents.SessionCreatedPayloadV1{
			SessionID: info.SessionID,
			Players:   info.Players,
			Courts:    info.Courts,
		},
	}}, nil
}

// HandleRosterImportRequested loads players from an uploaded roster file.
func (h *SessionHandlers) HandleRosterImportRequested(
	ctx context.Context,
	payload *sessionevents.RosterImportRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.SessionID == "" {
		return h.missingSession(ctx, "HandleRosterImportRequested")
	}
	ctx, span := h.tracer.Start(ctx, "SessionHandlers.HandleRosterImportRequested")
	defer span.End()

	result, err := h.service.ImportRoster(ctx, sessionservice.ImportRosterRequest{
		SessionID:   payload.SessionID,
		FileName:    payload.FileName,
		Data:        payload.FileData,
		RatingScale: scheduler.RatingScale(payload.RatingScale),
		RequestedAt: payload.RequestedAt,
	})
	if err != nil {
		return nil, err
	}
	if result.Failure != nil {
		return h.failure(ctx, sessionevents.OperationImportRoster, payload.SessionID, *result.Failure), nil
	}
	if result.Success == nil {
		return nil, nil
	}

	info := *result.Success
	return []handlerwrapper.Result{{
		Topic: eventbus.FormatSessionScopedTopic(sessionevents.SessionCreatedV1, info.SessionID),
		Payload: &sessionevents.SessionCreatedPayloadV1{
			SessionID: info.SessionID,
			Players:   info.Players,
			Courts:    info.Courts,
		},
	}}, nil
}

func courtRequest(c sessionevents.CourtPayloadV1) sessionservice.CourtRequest {
	req := sessionservice.CourtRequest{
		CourtID:   c.CourtID,
		CourtName: c.CourtName,
	}
	if c.StartTime != nil {
		req.Start = *c.StartTime
	}
	if c.EndTime != nil {
		req.End = *c.EndTime
	}
	return req
}
