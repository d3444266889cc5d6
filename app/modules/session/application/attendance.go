package sessionservice

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	sessiondb "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories"
	sessionutil "github.com/courtside-club/courtside/app/modules/session/utils"
)

// RecordArrival creates or widens a player's attendance and regenerates the
// open rounds. Unknown players join the roster.
func (s *SessionService) RecordArrival(ctx context.Context, req ArrivalRequest) (ScheduleResult, error) {
	return s.mutateSchedule(ctx, "RecordArrival", req.SessionID, false,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			if req.PlayerID == "" {
				return nil, fmt.Errorf("%w: player id is required", ErrInvalidRequest)
			}
			clock := s.anchor(req.RequestedAt)
			session := st.session

			arriveAt, err := s.parseTime(req.ArriveAt, clock, req.Location)
			if err != nil {
				return nil, err
			}
			arriveAt = clampTime(arriveAt, session.StartTime, session.EndTime)

			leaveAt := session.EndTime
			for _, a := range st.snapshot.Attendance {
				if a.PlayerID == req.PlayerID && a.LeaveAt.After(arriveAt) {
					leaveAt = a.LeaveAt
				}
			}
			if req.LeaveAt != "" {
				if leaveAt, err = s.parseTime(req.LeaveAt, clock, req.Location); err != nil {
					return nil, err
				}
				leaveAt = clampTime(leaveAt, session.StartTime, session.EndTime)
			}
			if !leaveAt.After(arriveAt) {
				return nil, fmt.Errorf("%w: leave time %s is not after arrival %s", ErrInvalidRequest, leaveAt.Format(time.RFC3339), arriveAt.Format(time.RFC3339))
			}

			if err := s.ensurePlayer(ctx, db, st, req); err != nil {
				return nil, err
			}
			if err := s.repo.UpsertAttendance(ctx, db, &sessiondb.Attendance{
				SessionID: session.ID,
				PlayerID:  req.PlayerID,
				ArriveAt:  arriveAt,
				LeaveAt:   leaveAt,
			}); err != nil {
				return nil, err
			}
			return s.regenerateAfterRosterChange(ctx, db, st)
		})
}

// RecordDeparture shortens a player's attendance and regenerates the open
// rounds. Attendance rows are never deleted.
func (s *SessionService) RecordDeparture(ctx context.Context, req DepartureRequest) (ScheduleResult, error) {
	return s.mutateSchedule(ctx, "RecordDeparture", req.SessionID, false,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			var current *scheduler.Attendance
			for i := range st.snapshot.Attendance {
				if st.snapshot.Attendance[i].PlayerID == req.PlayerID {
					current = &st.snapshot.Attendance[i]
				}
			}
			if current == nil {
				return nil, fmt.Errorf("%w: %s is not attending", scheduler.ErrPlayerUnavailable, req.PlayerID)
			}

			leaveAt, err := s.parseTime(req.LeaveAt, s.anchor(req.RequestedAt), req.Location)
			if err != nil {
				return nil, err
			}
			leaveAt = clampTime(leaveAt, current.ArriveAt, current.LeaveAt)

			if err := s.repo.UpsertAttendance(ctx, db, &sessiondb.Attendance{
				SessionID: st.session.ID,
				PlayerID:  req.PlayerID,
				ArriveAt:  current.ArriveAt,
				LeaveAt:   leaveAt,
			}); err != nil {
				return nil, err
			}
			return s.regenerateAfterRosterChange(ctx, db, st)
		})
}

// ensurePlayer adds an unknown player to the roster or reactivates one.
func (s *SessionService) ensurePlayer(ctx context.Context, db bun.IDB, st *sessionState, req ArrivalRequest) error {
	for _, p := range st.players {
		if p.PlayerID != req.PlayerID {
			continue
		}
		if p.Active {
			return nil
		}
		p.Active = true
		return s.repo.UpsertPlayers(ctx, db, []sessiondb.Player{p})
	}

	name := req.DisplayName
	if name == "" {
		name = req.PlayerID
	}
	player := sessiondb.Player{
		SessionID:   st.session.ID,
		PlayerID:    req.PlayerID,
		DisplayName: name,
		Active:      true,
	}
	if req.Rating != nil {
		v := scheduler.NormalizeRating(*req.Rating, scheduler.DetectScale(*req.Rating))
		player.Rating = &v
	}
	return s.repo.UpsertPlayers(ctx, db, []sessiondb.Player{player})
}

// regenerateAfterRosterChange reloads the snapshot and rebuilds open rounds.
// Without a schedule only the roster change is kept.
func (s *SessionService) regenerateAfterRosterChange(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
	reloaded, err := s.loadState(ctx, db, st.session.ID)
	if err != nil {
		return nil, err
	}
	*st = *reloaded
	if st.schedule == nil {
		return nil, nil
	}
	return s.engine.Regenerate(st.snapshot, st.schedule)
}

func (s *SessionService) anchor(requestedAt time.Time) sessionutil.Clock {
	if requestedAt.IsZero() {
		return s.clock
	}
	return sessionutil.NewAnchorClock(requestedAt)
}

func (s *SessionService) parseTime(input string, clock sessionutil.Clock, loc *time.Location) (time.Time, error) {
	t, err := s.timeParser.Parse(input, clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return t, nil
}

func clampTime(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}
