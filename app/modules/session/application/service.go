package sessionservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	sessionmetrics "github.com/courtside-club/courtside/app/metrics/session"
	"github.com/courtside-club/courtside/app/modules/session/application/parsers"
	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	sessiondb "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories"
	sessionutil "github.com/courtside-club/courtside/app/modules/session/utils"
	"github.com/courtside-club/courtside/pkg/handlerwrapper"
	"github.com/courtside-club/courtside/pkg/results"
)

const serviceName = "SessionService"

// SessionService implements the Service interface.
type SessionService struct {
	repo           sessiondb.Repository
	engine         *scheduler.Engine
	allowCourtless bool
	finisher       FinishScheduler
	logger         *slog.Logger
	metrics        sessionmetrics.SessionMetrics
	tracer         trace.Tracer
	db             *bun.DB
	clock          sessionutil.Clock
	timeParser     parsers.ArrivalParser
	parserFactory  parsers.ParserFactory
	locks          *sessionLocks
}

// NewSessionService creates a new SessionService. finisher may be nil when
// no queue is configured.
func NewSessionService(
	repo sessiondb.Repository,
	opts scheduler.Options,
	finisher FinishScheduler,
	logger *slog.Logger,
	metrics sessionmetrics.SessionMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = sessionmetrics.NewNoop()
	}
	return &SessionService{
		repo:           repo,
		engine:         scheduler.NewEngine(opts),
		allowCourtless: opts.AllowCourtless,
		finisher:       finisher,
		logger:         logger,
		metrics:        metrics,
		tracer:         tracer,
		db:             db,
		clock:          sessionutil.RealClock{},
		timeParser:     parsers.NewTimeParser(),
		parserFactory:  parsers.NewFactory(),
		locks:          newSessionLocks(),
	}
}

// -----------------------------------------------------------------------------
// Session state
// -----------------------------------------------------------------------------

// sessionState is everything an engine call needs, loaded in one transaction.
type sessionState struct {
	session  *sessiondb.Session
	players  []sessiondb.Player
	snapshot scheduler.Snapshot
	schedule *scheduler.SessionSchedule
	version  int64
}

func (s *SessionService) loadState(ctx context.Context, db bun.IDB, sessionID string) (*sessionState, error) {
	session, err := s.repo.GetSession(ctx, db, sessionID)
	if err != nil {
		if errors.Is(err, sessiondb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	players, err := s.repo.GetPlayers(ctx, db, sessionID)
	if err != nil {
		return nil, err
	}
	attendance, err := s.repo.GetAttendance(ctx, db, sessionID)
	if err != nil {
		return nil, err
	}
	courts, err := s.repo.GetCourts(ctx, db, sessionID)
	if err != nil {
		return nil, err
	}

	st := &sessionState{
		session:  session,
		players:  players,
		snapshot: sessiondb.ToSnapshot(session, players, attendance, courts),
	}
	row, err := s.repo.GetSchedule(ctx, db, sessionID)
	switch {
	case err == nil:
		st.schedule = sessiondb.ToDomainSchedule(row)
		st.version = row.Version
	case errors.Is(err, sessiondb.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return st, nil
}

// mutation computes the next schedule from the loaded state. Returning a nil
// schedule without error means nothing needs saving.
type mutation func(ctx context.Context, db bun.IDB, st *sessionState) (*scheduler.SessionSchedule, error)

// mutateSchedule serializes work per session, runs fn in a transaction and
// persists its result with a version check.
func (s *SessionService) mutateSchedule(ctx context.Context, operation, sessionID string, requireSchedule bool, fn mutation) (ScheduleResult, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	return withTelemetry(s, ctx, operation, sessionID, func(ctx context.Context) (ScheduleResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ScheduleResult, error) {
			st, err := s.loadState(ctx, db, sessionID)
			if err != nil {
				return domainOrInfra[*scheduler.SessionSchedule](err)
			}
			if st.session.Finished() {
				return results.FailureResult[*scheduler.SessionSchedule, error](ErrSessionFinished), nil
			}
			if requireSchedule && st.schedule == nil {
				return results.FailureResult[*scheduler.SessionSchedule, error](ErrNoSchedule), nil
			}

			next, err := fn(ctx, db, st)
			if err != nil {
				return domainOrInfra[*scheduler.SessionSchedule](err)
			}
			if next == nil {
				return results.SuccessResult[*scheduler.SessionSchedule, error](st.schedule), nil
			}
			return s.persist(ctx, db, operation, st, next)
		})
	})
}

// persist validates and saves next, expecting the version loaded in st.
func (s *SessionService) persist(ctx context.Context, db bun.IDB, operation string, st *sessionState, next *scheduler.SessionSchedule) (ScheduleResult, error) {
	if err := scheduler.Validate(st.snapshot, next, s.allowCourtless); err != nil {
		return ScheduleResult{}, fmt.Errorf("refusing to save invalid schedule: %w", err)
	}

	version, err := s.repo.SaveSchedule(ctx, db, sessiondb.FromDomainSchedule(next), st.version)
	if err != nil {
		if errors.Is(err, sessiondb.ErrVersionConflict) {
			s.metrics.RecordVersionConflict(ctx, operation)
			return results.FailureResult[*scheduler.SessionSchedule, error](
				fmt.Errorf("%w: expected version %d", ErrConcurrentModification, st.version),
			), nil
		}
		return ScheduleResult{}, fmt.Errorf("failed to save schedule: %w", err)
	}
	next.Version = version

	var assignments, resting int
	for _, r := range next.Rounds {
		assignments += len(r.Assignments)
		resting += len(r.Resting)
	}
	s.metrics.RecordScheduleBuilt(ctx, operation, len(next.Rounds), assignments, resting)
	return results.SuccessResult[*scheduler.SessionSchedule, error](next), nil
}

// domainOrInfra turns domain errors into failures and passes the rest through.
func domainOrInfra[S any](err error) (results.OperationResult[S, error], error) {
	if isDomainError(err) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, err
}

// -----------------------------------------------------------------------------
// Per-session locking
// -----------------------------------------------------------------------------

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks hands out one mutex per session id and forgets it once
// nobody holds or waits for it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*lockEntry)}
}

func (l *sessionLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *SessionService,
	ctx context.Context,
	operationName string,
	sessionID string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("session_id", sessionID),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	correlationID := slog.String("correlation_id", handlerwrapper.CorrelationID(ctx))
	s.logger.InfoContext(ctx, "Operation triggered", correlationID, slog.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				correlationID,
				slog.String("session_id", sessionID),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			correlationID,
			slog.String("operation", operationName),
			slog.String("session_id", sessionID),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			correlationID,
			slog.String("operation", operationName),
			slog.String("session_id", sessionID),
			slog.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			correlationID,
			slog.String("operation", operationName),
			slog.String("session_id", sessionID),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// errRollback aborts a transaction whose operation returned a domain failure.
var errRollback = errors.New("rollback on failure result")

// runInTx ensures the operation runs within a transaction. Failure results
// roll back so a rejected request leaves no partial writes.
func runInTx[S any, F any](
	s *SessionService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		if txErr == nil && result.IsFailure() {
			return errRollback
		}
		return txErr
	})
	if errors.Is(err, errRollback) {
		return result, nil
	}
	return result, err
}
