package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	sessionmetrics "github.com/courtside-club/courtside/app/metrics/session"
	sessionservice "github.com/courtside-club/courtside/app/modules/session/application"
	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
	sessionhandlers "github.com/courtside-club/courtside/app/modules/session/infrastructure/handlers"
	sessionqueue "github.com/courtside-club/courtside/app/modules/session/infrastructure/queue"
	sessiondb "github.com/courtside-club/courtside/app/modules/session/infrastructure/repositories"
	sessionrouter "github.com/courtside-club/courtside/app/modules/session/infrastructure/router"
	"github.com/courtside-club/courtside/config"
	"github.com/courtside-club/courtside/pkg/eventbus"
)

// Module represents the session module.
type Module struct {
	SessionService sessionservice.Service
	SessionRouter  *sessionrouter.SessionRouter
	QueueService   *sessionqueue.Service
	logger         *slog.Logger
	cancelFunc     context.CancelFunc
}

// Deps are the shared resources the module is built on. Registry and DSN
// are optional: without a registry metrics are discarded, without a DSN no
// finish jobs are scheduled.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	EventBus eventbus.EventBus
	Router   *message.Router
	DB       *bun.DB
	DSN      string
}

// NewSessionModule creates and initializes a new session module.
func NewSessionModule(ctx context.Context, deps Deps, routerCtx context.Context) (*Module, error) {
	logger := deps.Logger
	logger.InfoContext(ctx, "session.NewSessionModule initializing")

	// 1. Initialize Repository
	repo := sessiondb.NewRepository(deps.DB)

	// 2. Initialize Metrics
	var metrics sessionmetrics.SessionMetrics
	if deps.Registry != nil {
		metrics = sessionmetrics.NewPrometheus(deps.Registry, "courtside")
	} else {
		metrics = sessionmetrics.NewNoop()
	}

	// 3. Initialize the finish queue
	var queue *sessionqueue.Service
	var finisher sessionservice.FinishScheduler
	if deps.DSN != "" {
		q, err := sessionqueue.NewService(ctx, deps.DB, logger, deps.DSN, metrics, deps.EventBus)
		if err != nil {
			return nil, fmt.Errorf("failed to create session queue: %w", err)
		}
		queue, finisher = q, q
	}

	// 4. Initialize Service
	service := sessionservice.NewSessionService(repo, scheduler.Options{
		AllowCourtless: deps.Config.Scheduler.AllowCourtless,
		CandidateLimit: deps.Config.Scheduler.CandidateLimit,
	}, finisher, logger, metrics, deps.Tracer, deps.DB)

	// 5. Initialize Handlers
	var limiter *sessionhandlers.SessionRateLimiter
	if perMinute := deps.Config.RateLimit.PerMinute; perMinute > 0 {
		limiter = sessionhandlers.NewSessionRateLimiter(rate.Limit(perMinute/60), deps.Config.RateLimit.Burst)
	}
	handlers := sessionhandlers.NewSessionHandlers(service, limiter, logger, deps.Tracer, metrics)

	// 6. Initialize Router
	sessionRouter := sessionrouter.NewSessionRouter(
		logger,
		deps.Router,
		deps.EventBus,
		deps.EventBus,
		deps.Tracer,
		metrics,
		deps.Registry,
	)

	// 7. Configure the router with handlers
	if err := sessionRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure session router: %w", err)
	}

	return &Module{
		SessionService: service,
		SessionRouter:  sessionRouter,
		QueueService:   queue,
		logger:         logger,
	}, nil
}

// Run starts the finish queue and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting session module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Session queue failed to start", slog.String("error", err.Error()))
		}
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Session module goroutine stopped")
}

// Close shuts down the session module.
func (m *Module) Close() error {
	m.logger.Info("Stopping session module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Stop(context.Background()); err != nil {
			m.logger.Error("Error stopping session queue", "error", err)
		}
	}

	if m.SessionRouter != nil {
		if err := m.SessionRouter.Close(); err != nil {
			m.logger.Error("Error closing SessionRouter from module", "error", err)
			return fmt.Errorf("error closing SessionRouter: %w", err)
		}
	}

	m.logger.Info("Session module stopped")
	return nil
}
