package sessionservice

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
)

// GenerateSchedule builds the whole schedule from scratch. It refuses to
// overwrite a schedule that already has locked rounds.
func (s *SessionService) GenerateSchedule(ctx context.Context, sessionID string) (ScheduleResult, error) {
	result, err := s.mutateSchedule(ctx, "GenerateSchedule", sessionID, false,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			if st.schedule != nil && len(st.schedule.LockedIndices()) > 0 {
				return nil, ErrScheduleLocked
			}
			return s.engine.Generate(st.snapshot)
		})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	s.scheduleFinish(ctx, sessionID, *result.Success)
	return result, nil
}

// RegenerateRemaining rebuilds every open round and keeps locked ones.
func (s *SessionService) RegenerateRemaining(ctx context.Context, sessionID string) (ScheduleResult, error) {
	return s.mutateSchedule(ctx, "RegenerateRemaining", sessionID, true,
		func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error) {
			return s.engine.Regenerate(st.snapshot, st.schedule)
		})
}

// scheduleFinish enqueues the auto-finish job at the end of the last round.
// Failures are logged; the session can still be finished explicitly.
func (s *SessionService) scheduleFinish(ctx context.Context, sessionID string, sched *scheduler.SessionSchedule) {
	if s.finisher == nil || sched == nil || len(sched.Rounds) == 0 {
		return
	}
	at := sched.Rounds[len(sched.Rounds)-1].End
	if err := s.finisher.ScheduleSessionFinish(ctx, sessionID, at); err != nil {
		s.logger.WarnContext(ctx, "Failed to schedule session finish",
			slog.String("session_id", sessionID),
			slog.Time("finish_at", at),
			slog.Any("error", err),
		)
	}
}
