package sessionservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	sessiondb "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories"
	"github.com/courtside-club/courtside/pkg/results"
)

// CreateSession stores a session with its roster and courts. Every player
// attends the whole window until told otherwise.
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (results.OperationResult[*SessionInfo, error], error) {
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	unlock := s.locks.lock(req.SessionID)
	defer unlock()

	result, err := withTelemetry(s, ctx, "CreateSession", req.SessionID, func(ctx context.Context) (results.OperationResult[*SessionInfo, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*SessionInfo, error], error) {
			return s.createSessionLogic(ctx, db, req)
		})
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	if s.finisher != nil {
		if err := s.finisher.ScheduleSessionFinish(ctx, req.SessionID, req.End); err != nil {
			s.logger.WarnContext(ctx, "Failed to schedule session finish",
				slog.String("session_id", req.SessionID),
				slog.Any("error", err),
			)
		}
	}
	return result, nil
}

func (s *SessionService) createSessionLogic(ctx context.Context, db bun.IDB, req CreateSessionRequest) (results.OperationResult[*SessionInfo, error], error) {
	fail := func(err error) (results.OperationResult[*SessionInfo, error], error) {
		return results.FailureResult[*SessionInfo, error](err), nil
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail(fmt.Errorf("%w: session name is required", ErrInvalidRequest))
	}
	if !req.Start.Before(req.End) || req.RoundMinutes <= 0 {
		return fail(fmt.Errorf("%w: start must precede end and rounds must be positive", scheduler.ErrInvalidSession))
	}

	players, err := rosterRows(req.SessionID, req.Players, req.RatingScale)
	if err != nil {
		return fail(err)
	}

	_, err = s.repo.GetSession(ctx, db, req.SessionID)
	switch {
	case err == nil:
		return fail(fmt.Errorf("%w: %s", ErrSessionExists, req.SessionID))
	case !errors.Is(err, sessiondb.ErrNotFound):
		return results.OperationResult[*SessionInfo, error]{}, fmt.Errorf("failed to check session: %w", err)
	}

	session := &sessiondb.Session{
		ID:           req.SessionID,
		Name:         name,
		StartTime:    req.Start.UTC(),
		EndTime:      req.End.UTC(),
		RoundMinutes: req.RoundMinutes,
	}
	if err := s.repo.CreateSession(ctx, db, session); err != nil {
		return results.OperationResult[*SessionInfo, error]{}, err
	}

	if err := s.repo.UpsertPlayers(ctx, db, players); err != nil {
		return results.OperationResult[*SessionInfo, error]{}, err
	}
	for _, p := range players {
		if err := s.repo.UpsertAttendance(ctx, db, &sessiondb.Attendance{
			SessionID: session.ID,
			PlayerID:  p.PlayerID,
			ArriveAt:  session.StartTime,
			LeaveAt:   session.EndTime,
		}); err != nil {
			return results.OperationResult[*SessionInfo, error]{}, err
		}
	}

	seen := make(map[string]bool, len(req.Courts))
	for _, c := range req.Courts {
		court, err := buildCourt(session, c)
		if err != nil {
			return fail(err)
		}
		if seen[court.ID] {
			return fail(fmt.Errorf("%w: duplicate court %s", ErrInvalidCourt, court.ID))
		}
		seen[court.ID] = true
		if err := s.repo.AddCourt(ctx, db, court); err != nil {
			return results.OperationResult[*SessionInfo, error]{}, err
		}
	}

	return results.SuccessResult[*SessionInfo, error](&SessionInfo{
		SessionID: session.ID,
		Players:   len(players),
		Courts:    len(req.Courts),
	}), nil
}

// ImportRoster upserts players from a CSV or XLSX file. Arrival and leave
// columns accept the same input as RecordArrival.
func (s *SessionService) ImportRoster(ctx context.Context, req ImportRosterRequest) (results.OperationResult[*SessionInfo, error], error) {
	unlock := s.locks.lock(req.SessionID)
	defer unlock()

	return withTelemetry(s, ctx, "ImportRoster", req.SessionID, func(ctx context.Context) (results.OperationResult[*SessionInfo, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*SessionInfo, error], error) {
			return s.importRosterLogic(ctx, db, req)
		})
	})
}

func (s *SessionService) importRosterLogic(ctx context.Context, db bun.IDB, req ImportRosterRequest) (results.OperationResult[*SessionInfo, error], error) {
	fail := func(err error) (results.OperationResult[*SessionInfo, error], error) {
		return results.FailureResult[*SessionInfo, error](err), nil
	}

	parser, err := s.parserFactory.GetParser(req.FileName)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}
	entries, err := parser.Parse(req.Data)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}

	st, err := s.loadState(ctx, db, req.SessionID)
	if err != nil {
		return domainOrInfra[*SessionInfo](err)
	}
	if st.session.Finished() {
		return fail(ErrSessionFinished)
	}

	inputs := make([]PlayerInput, 0, len(entries))
	for _, e := range entries {
		inputs = append(inputs, PlayerInput{PlayerID: e.PlayerID, DisplayName: e.DisplayName, Rating: e.Rating, Active: true})
	}
	players, err := rosterRows(st.session.ID, inputs, req.RatingScale)
	if err != nil {
		return fail(err)
	}

	clock := s.anchor(req.RequestedAt)
	attendance := make([]*sessiondb.Attendance, 0, len(entries))
	for _, e := range entries {
		a := &sessiondb.Attendance{
			SessionID: st.session.ID,
			PlayerID:  e.PlayerID,
			ArriveAt:  st.session.StartTime,
			LeaveAt:   st.session.EndTime,
		}
		if e.ArriveAt != "" {
			if a.ArriveAt, err = s.parseTime(e.ArriveAt, clock, nil); err != nil {
				return fail(err)
			}
			a.ArriveAt = clampTime(a.ArriveAt, st.session.StartTime, st.session.EndTime)
		}
		if e.LeaveAt != "" {
			if a.LeaveAt, err = s.parseTime(e.LeaveAt, clock, nil); err != nil {
				return fail(err)
			}
			a.LeaveAt = clampTime(a.LeaveAt, a.ArriveAt, st.session.EndTime)
		}
		attendance = append(attendance, a)
	}

	if err := s.repo.UpsertPlayers(ctx, db, players); err != nil {
		return results.OperationResult[*SessionInfo, error]{}, err
	}
	for _, a := range attendance {
		if err := s.repo.UpsertAttendance(ctx, db, a); err != nil {
			return results.OperationResult[*SessionInfo, error]{}, err
		}
	}

	return results.SuccessResult[*SessionInfo, error](&SessionInfo{
		SessionID: st.session.ID,
		Players:   len(players),
		Courts:    len(st.snapshot.Courts),
	}), nil
}

// rosterRows validates players and normalizes their ratings on one scale.
func rosterRows(sessionID string, in []PlayerInput, scale scheduler.RatingScale) ([]sessiondb.Player, error) {
	if scale == "" {
		highest := 0.0
		for _, p := range in {
			if p.Rating != nil {
				highest = max(highest, *p.Rating)
			}
		}
		scale = scheduler.DetectScale(highest)
	}

	seen := make(map[string]bool, len(in))
	out := make([]sessiondb.Player, 0, len(in))
	for _, p := range in {
		if p.PlayerID == "" {
			return nil, fmt.Errorf("%w: player id is required", scheduler.ErrInvalidRoster)
		}
		if seen[p.PlayerID] {
			return nil, fmt.Errorf("%w: duplicate player %s", scheduler.ErrInvalidRoster, p.PlayerID)
		}
		seen[p.PlayerID] = true

		row := sessiondb.Player{
			SessionID:   sessionID,
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			Active:      p.Active,
		}
		if row.DisplayName == "" {
			row.DisplayName = p.PlayerID
		}
		if p.Rating != nil {
			v := scheduler.NormalizeRating(*p.Rating, scale)
			row.Rating = &v
		}
		out = append(out, row)
	}
	return out, nil
}
