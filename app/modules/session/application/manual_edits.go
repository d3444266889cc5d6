package sessionservice

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
)

// InsertManualMatch adds a hand-picked match and locks its round.
func (s *SessionService) InsertManualMatch(ctx context.Context, sessionID string, req ManualMatchRequest) (ScheduleResult, error) {
	return s.mutateSchedule(ctx, "InsertManualMatch", sessionID, true,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			return s.engine.InsertManualMatch(st.snapshot, st.schedule, scheduler.ManualMatch{
				RoundIndex: req.RoundIndex,
				TeamA:      req.TeamA,
				TeamB:      req.TeamB,
				CourtID:    req.CourtID,
			})
		})
}

// SwapPlayer replaces one player of an unscored assignment.
func (s *SessionService) SwapPlayer(ctx context.Context, sessionID string, req SwapRequest) (ScheduleResult, error) {
	return s.mutateSchedule(ctx, "SwapPlayer", sessionID, true,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			return s.engine.SwapPlayer(st.snapshot, st.schedule, scheduler.Swap{
				RoundIndex:   req.RoundIndex,
				AssignmentID: req.AssignmentID,
				PlayerOut:    req.PlayerOut,
				PlayerIn:     req.PlayerIn,
			})
		})
}

// RecordScore stores a result and locks the round.
func (s *SessionService) RecordScore(ctx context.Context, sessionID, assignmentID string, teamA, teamB int) (ScheduleResult, error) {
	return s.mutateSchedule(ctx, "RecordScore", sessionID, true,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			return s.engine.RecordScore(st.schedule, assignmentID, teamA, teamB)
		})
}

// DeleteAssignment removes one match.
func (s *SessionService) DeleteAssignment(ctx context.Context, sessionID, assignmentID string) (ScheduleResult, error) {
	return s.mutateSchedule(ctx, "DeleteAssignment", sessionID, true,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			return s.engine.DeleteAssignment(st.snapshot, st.schedule, assignmentID)
		})
}

// DeleteRound removes every match of a round. The round slot stays.
func (s *SessionService) DeleteRound(ctx context.Context, sessionID string, roundIndex int) (ScheduleResult, error) {
	return s.mutateSchedule(ctx, "DeleteRound", sessionID, true,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			return s.engine.DeleteRound(st.snapshot, st.schedule, roundIndex)
		})
}
