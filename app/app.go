package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/courtside-club/courtside/app/modules/session"
	"github.com/courtside-club/courtside/config"
	watermillutil "github.com/courtside-club/courtside/internal/watermill"
)

// App holds the shared resources and the modules built on them.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	DB       *bun.DB
	PubSub   *watermillutil.PubSub
	Router   *message.Router
	Modules  []Module
}

// NewApp connects to Postgres and NATS and builds every module.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Tracer:   otel.Tracer("courtside"),
		Registry: prometheus.NewRegistry(),
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = bun.NewDB(sqldb, pgdialect.New())

	pubsub, err := watermillutil.NewPubSub(ctx, config.ToWatermillConfig(cfg), logger)
	if err != nil {
		app.DB.Close()
		return nil, err
	}
	app.PubSub = pubsub

	router, err := newMessageRouter(logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Router = router

	sessionModule, err := session.NewSessionModule(ctx, session.Deps{
		Config:   cfg,
		Logger:   logger,
		Tracer:   app.Tracer,
		Registry: app.Registry,
		EventBus: pubsub,
		Router:   router,
		DB:       app.DB,
		DSN:      cfg.Postgres.DSN,
	}, ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize session module: %w", err)
	}
	app.Modules = append(app.Modules, sessionModule)

	logger.InfoContext(ctx, "Application initialized", slog.Int("modules", len(app.Modules)))
	return app, nil
}

// Run starts the modules, the ops server and the message router, and
// blocks until ctx is cancelled or the router stops.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, m := range app.Modules {
		wg.Add(1)
		go m.Run(ctx, &wg)
	}

	if addr := app.Config.Observability.MetricsAddress; addr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.Start(ctx, addr); err != nil {
				app.Logger.ErrorContext(ctx, "Ops server stopped", slog.String("error", err.Error()))
			}
		}()
	}

	err := app.Router.Run(ctx)
	cancel()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("message router stopped: %w", err)
	}
	return nil
}

// Close releases modules and connections in reverse order of creation.
func (app *App) Close() {
	for _, m := range app.Modules {
		if err := m.Close(); err != nil {
			app.Logger.Error("Failed to close module", slog.String("error", err.Error()))
		}
	}
	if app.Router != nil {
		_ = app.Router.Close()
	}
	if app.PubSub != nil {
		if err := app.PubSub.Close(); err != nil {
			app.Logger.Error("Failed to close NATS", slog.String("error", err.Error()))
		}
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}
