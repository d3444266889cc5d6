package sessionrouter

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	sessionevents "github.com/courtside-club/courtside/app/modules/session/events"
	sessionhandlers "github.com/courtside-club/courtside/app/modules/session/infrastructure/handlers"
	"github.com/courtside-club/courtside/pkg/eventbus"
	"github.com/courtside-club/courtside/pkg/handlerwrapper"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// SessionRouter binds the session request topics to their handlers.
type SessionRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
	metrics    handlerwrapper.ReturningMetrics

	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

func NewSessionRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	handlerMetrics handlerwrapper.ReturningMetrics,
	registry *prometheus.Registry,
) *SessionRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		b := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		metricsBuilder = &b
	}

	return &SessionRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metrics:        handlerMetrics,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

func (r *SessionRouter) Configure(_ context.Context, handlers sessionhandlers.Handlers) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.registerHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.ReturningMetrics
}

// registerHandler registers a transforming handler with a typed payload.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "session." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"", // destination comes from the "topic" metadata of each result
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

func (r *SessionRouter) registerHandlers(h sessionhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  eventbus.NewTopicPublisher(r.publisher),
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, sessionevents.SessionCreateRequestedV1, h.HandleSessionCreateRequested)
	registerHandler(deps, sessionevents.RosterImportRequestedV1, h.HandleRosterImportRequested)

	registerHandler(deps, sessionevents.ScheduleGenerateRequestedV1, h.HandleScheduleGenerateRequested)
	registerHandler(deps, sessionevents.ScheduleRegenerateRequestedV1, h.HandleScheduleRegenerateRequested)
	registerHandler(deps, sessionevents.ScheduleRetrieveRequestedV1, h.HandleScheduleRetrieveRequested)

	registerHandler(deps, sessionevents.ManualMatchRequestedV1, h.HandleManualMatchRequested)
	registerHandler(deps, sessionevents.ManualSwapRequestedV1, h.HandleManualSwapRequested)
	registerHandler(deps, sessionevents.ScoreRequestedV1, h.HandleScoreRequested)
	registerHandler(deps, sessionevents.AssignmentDeleteRequestedV1, h.HandleAssignmentDeleteRequested)
	registerHandler(deps, sessionevents.RoundDeleteRequestedV1, h.HandleRoundDeleteRequested)

	registerHandler(deps, sessionevents.PlayerArrivedV1, h.HandlePlayerArrived)
	registerHandler(deps, sessionevents.PlayerDepartedV1, h.HandlePlayerDeparted)
	registerHandler(deps, sessionevents.CourtAddRequestedV1, h.HandleCourtAddRequested)

	registerHandler(deps, sessionevents.SessionFinishRequestedV1, h.HandleSessionFinishRequested)
	registerHandler(deps, sessionevents.SessionSummaryRequestedV1, h.HandleSessionSummaryRequested)
}

// Close stops the router.
func (r *SessionRouter) Close() error {
	return r.Router.Close()
}
