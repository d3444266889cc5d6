package sessionservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	sessiondb "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories"
	"github.com/courtside-club/courtside/pkg/results"
)

// FinishSession closes the session and returns its summary. Later
// mutations fail with ErrSessionFinished.
func (s *SessionService) FinishSession(ctx context.Context, sessionID string) (results.OperationResult[*FinishedSession, error], error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	return withTelemetry(s, ctx, "FinishSession", sessionID, func(ctx context.Context) (results.OperationResult[*FinishedSession, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*FinishedSession, error], error) {
			if _, err := s.repo.GetSessionForUpdate(ctx, db, sessionID); err != nil {
				if errors.Is(err, sessiondb.ErrNotFound) {
					return results.FailureResult[*FinishedSession, error](fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)), nil
				}
				return results.OperationResult[*FinishedSession, error]{}, err
			}
			st, err := s.loadState(ctx, db, sessionID)
			if err != nil {
				return domainOrInfra[*FinishedSession](err)
			}
			if st.session.Finished() {
				return results.FailureResult[*FinishedSession, error](ErrSessionFinished), nil
			}

			now := s.clock.Now().UTC()
			if err := s.repo.MarkFinished(ctx, db, sessionID, now); err != nil {
				return results.OperationResult[*FinishedSession, error]{}, err
			}
			if s.finisher != nil {
				if err := s.finisher.CancelSessionJobs(ctx, sessionID); err != nil {
					s.logger.WarnContext(ctx, "Failed to cancel pending finish job",
						slog.String("session_id", sessionID),
						slog.Any("error", err),
					)
				}
			}
			return results.SuccessResult[*FinishedSession, error](&FinishedSession{
				SessionID:  sessionID,
				FinishedAt: now,
				Summary:    summarize(st),
			}), nil
		})
	})
}

// GetSchedule returns the stored schedule.
func (s *SessionService) GetSchedule(ctx context.Context, sessionID string) (ScheduleResult, error) {
	return withTelemetry(s, ctx, "GetSchedule", sessionID, func(ctx context.Context) (ScheduleResult, error) {
		st, err := s.loadState(ctx, nil, sessionID)
		if err != nil {
			return domainOrInfra[*scheduler.SessionSchedule](err)
		}
		if st.schedule == nil {
			return results.FailureResult[*scheduler.SessionSchedule, error](ErrNoSchedule), nil
		}
		return results.SuccessResult[*scheduler.SessionSchedule, error](st.schedule), nil
	})
}

// GetSummary computes standings from the scored matches so far.
func (s *SessionService) GetSummary(ctx context.Context, sessionID string) (results.OperationResult[*scheduler.Summary, error], error) {
	return withTelemetry(s, ctx, "GetSummary", sessionID, func(ctx context.Context) (results.OperationResult[*scheduler.Summary, error], error) {
		st, err := s.loadState(ctx, nil, sessionID)
		if err != nil {
			return domainOrInfra[*scheduler.Summary](err)
		}
		if st.schedule == nil {
			return results.FailureResult[*scheduler.Summary, error](ErrNoSchedule), nil
		}
		summary := summarize(st)
		return results.SuccessResult[*scheduler.Summary, error](&summary), nil
	})
}

func summarize(st *sessionState) scheduler.Summary {
	summary := scheduler.Summarize(st.schedule, st.snapshot.Players)
	summary.SessionID = st.session.ID
	return summary
}
