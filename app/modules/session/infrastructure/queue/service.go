package sessionqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	"github.com/courtside-club/courtside/pkg/eventbus"
)

const (
	queueName     = "session"
	operationKind = "river"
)

// Metrics is the subset of the session metrics used by the queue.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService schedules delayed session jobs.
type QueueService interface {
	// ScheduleSessionFinish arranges for the session to be finished at the given time.
	ScheduleSessionFinish(ctx context.Context, sessionID string, at time.Time) error
	// CancelSessionJobs cancels pending jobs for the session.
	CancelSessionJobs(ctx context.Context, sessionID string) error
	// GetScheduledJobs lists the session's jobs.
	GetScheduledJobs(ctx context.Context, sessionID string) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service handles job scheduling for the session module using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics Metrics
	now     func() time.Time
}

// NewService creates a River client on its own pgx pool and registers the
// session workers.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics Metrics, eventBus eventbus.EventBus) (*Service, error) {
	ctxLogger := logger.With(
		slog.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", operationKind)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", operationKind)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", operationKind)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", operationKind)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewSessionFinishWorker(ctxLogger, eventBus))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			queueName:          {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", operationKind)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", operationKind)
	metrics.RecordOperationDuration(ctx, "initialize_service", operationKind, time.Since(start))
	ctxLogger.Info("Session queue service initialized")

	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting session queue service")
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", slog.String("error", err.Error()))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop waits for running jobs and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping session queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", slog.String("error", err.Error()))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

// ScheduleSessionFinish inserts a finish job due at at, replacing any pending
// one for the session. Times already in the past are skipped.
func (s *Service) ScheduleSessionFinish(ctx context.Context, sessionID string, at time.Time) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_session_finish", operationKind)

	ctxLogger := s.logger.With(
		slog.String("session_id", sessionID),
		slog.Time("finish_at", at),
	)

	now := s.now()
	if !at.After(now) {
		ctxLogger.Info("Session end already passed, not scheduling finish")
		s.metrics.RecordOperationSuccess(ctx, "schedule_session_finish", operationKind)
		return nil
	}

	// A pending job from an earlier call is replaced by the new due time.
	if err := s.CancelSessionJobs(ctx, sessionID); err != nil {
		s.metrics.RecordOperationFailure(ctx, "schedule_session_finish", operationKind)
		return err
	}

	res, err := s.client.Insert(ctx, SessionFinishJob{SessionID: sessionID}, &river.InsertOpts{
		Queue:       queueName,
		ScheduledAt: at,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to schedule session finish job", slog.String("error", err.Error()))
		s.metrics.RecordOperationFailure(ctx, "schedule_session_finish", operationKind)
		return fmt.Errorf("failed to schedule session finish job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_session_finish", operationKind)
	s.metrics.RecordOperationDuration(ctx, "schedule_session_finish", operationKind, time.Since(start))
	ctxLogger.Info("Session finish job scheduled",
		slog.Int64("job_id", res.Job.ID),
		slog.Bool("duplicate", res.UniqueSkippedAsDuplicate),
		slog.Duration("delay", at.Sub(now)),
	)
	return nil
}

type riverJobRow struct {
	ID          int64          `bun:"id"`
	Kind        string         `bun:"kind"`
	State       string         `bun:"state"`
	Args        map[string]any `bun:"args"`
	ScheduledAt *time.Time     `bun:"scheduled_at"`
	CreatedAt   time.Time      `bun:"created_at"`
	Attempt     int16          `bun:"attempt"`
	MaxAttempts int16          `bun:"max_attempts"`
}

// CancelSessionJobs cancels the session's pending finish jobs.
func (s *Service) CancelSessionJobs(ctx context.Context, sessionID string) error {
	s.metrics.RecordOperationAttempt(ctx, "cancel_session_jobs", operationKind)

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state").
		Where("kind = ?", SessionFinishJob{}.Kind()).
		Where("state IN (?, ?)", "available", "scheduled").
		Where("args->>'session_id' = ?", sessionID).
		Scan(ctx, &jobs)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "cancel_session_jobs", operationKind)
		return fmt.Errorf("failed to query jobs for cancellation: %w", err)
	}

	cancelled := 0
	for _, job := range jobs {
		if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
			s.logger.Warn("Failed to cancel job",
				slog.Int64("job_id", job.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		cancelled++
	}

	if cancelled == len(jobs) {
		s.metrics.RecordOperationSuccess(ctx, "cancel_session_jobs", operationKind)
	} else {
		s.metrics.RecordOperationFailure(ctx, "cancel_session_jobs", operationKind)
	}
	s.logger.Info("Session jobs cancelled",
		slog.String("session_id", sessionID),
		slog.Int("found", len(jobs)),
		slog.Int("cancelled", cancelled),
	)
	return nil
}

// GetScheduledJobs returns the session's jobs ordered by due time.
func (s *Service) GetScheduledJobs(ctx context.Context, sessionID string) ([]JobInfo, error) {
	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "args", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", SessionFinishJob{}.Kind()).
		Where("args->>'session_id' = ?", sessionID).
		Order("scheduled_at ASC NULLS LAST", "created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled jobs: %w", err)
	}

	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		result[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			SessionID:   sessionID,
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return result, nil
}

// HealthCheck verifies the job table is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	var count int
	if err := s.db.NewSelect().Table("river_job").ColumnExpr("COUNT(*)").Scan(ctx, &count); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
