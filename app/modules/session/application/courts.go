package sessionservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	sessiondb "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories"
)

// AddCourt appends a court and regenerates the open rounds.
func (s *SessionService) AddCourt(ctx context.Context, sessionID string, req CourtRequest) (ScheduleResult, error) {
	return s.mutateSchedule(ctx, "AddCourt", sessionID, false,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			// Serializes position allocation with other instances.
			if _, err := s.repo.GetSessionForUpdate(ctx, db, sessionID); err != nil {
				if errors.Is(err, sessiondb.ErrNotFound) {
					return nil, ErrSessionNotFound
				}
				return nil, err
			}
			court, err := buildCourt(st.session, req)
			if err != nil {
				return nil, err
			}
			for _, c := range st.snapshot.Courts {
				if c.ID == court.ID {
					return nil, fmt.Errorf("%w: court %s already exists", ErrInvalidCourt, court.ID)
				}
			}
			if err := s.repo.AddCourt(ctx, db, court); err != nil {
				return nil, err
			}
			return s.regenerateAfterRosterChange(ctx, db, st)
		})
}

// buildCourt applies defaults and checks the court window fits the session.
func buildCourt(session *sessiondb.Session, req CourtRequest) (*sessiondb.Court, error) {
	name := strings.TrimSpace(req.CourtName)
	if name == "" {
		return nil, fmt.Errorf("%w: court name is required", ErrInvalidCourt)
	}
	court := &sessiondb.Court{
		ID:        req.CourtID,
		SessionID: session.ID,
		CourtName: name,
		StartTime: req.Start,
		EndTime:   req.End,
	}
	if court.ID == "" {
		court.ID = uuid.NewString()
	}
	if court.StartTime.IsZero() {
		court.StartTime = session.StartTime
	}
	if court.EndTime.IsZero() {
		court.EndTime = session.EndTime
	}
	if !court.StartTime.Before(court.EndTime) {
		return nil, fmt.Errorf("%w: court window is empty", ErrInvalidCourt)
	}
	if court.StartTime.Before(session.StartTime) || court.EndTime.After(session.EndTime) {
		return nil, fmt.Errorf("%w: court window outside session", ErrInvalidCourt)
	}
	return court, nil
}
