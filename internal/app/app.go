package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"webhook-fanout/internal/common/logging"
	"webhook-fanout/internal/config"
	"webhook-fanout/internal/fanout"
	"webhook-fanout/internal/handlers"
	"webhook-fanout/internal/metrics"
	"webhook-fanout/internal/routing"
)

// App holds all the application dependencies
type App struct {
	Config     *config.Config
	Store      routing.Store
	Table      *routing.Table
	Dispatcher *fanout.Dispatcher
	Metrics    *metrics.Metrics
	Handlers   *handlers.Handlers
	Logger     logging.Logger

	scheduler *cron.Cron
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
		done:   make(chan struct{}),
	}

	if err := app.initializeStorage(); err != nil {
		return nil, err
	}

	app.Metrics = metrics.New()
	app.Table = routing.NewTable(app.Store, logging.GetGlobalLogger())

	if err := app.reload(context.Background()); err != nil {
		app.closeStore()
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}

	app.initializeDispatcher()
	app.initializeHandlers()

	return app, nil
}

func (app *App) initializeDispatcher() {
	var sink fanout.Sink = fanout.NewLogSink(logging.GetGlobalLogger())
	if app.Config.MetricsEnabled {
		sink = fanout.MultiSink{sink, app.Metrics}
	}

	forwarder := fanout.NewForwarder(newForwardClient(), app.Config.ForwardTimeoutDuration())
	app.Dispatcher = fanout.NewDispatcher(app.Table, forwarder, sink, logging.GetGlobalLogger())
}

func (app *App) initializeHandlers() {
	app.Handlers = handlers.New(app.Table, app.Dispatcher, app.Config.MaxBodyBytesValue(),
		handlers.WithStore(app.Store),
		handlers.WithRoutesObserver(app.Metrics.SetRoutes),
	)
}

// Start begins background work: store watching and scheduled resync.
func (app *App) Start() error {
	if err := app.startResync(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.startWatch(ctx)
	return nil
}

// reload replaces the routing table with the store contents.
func (app *App) reload(ctx context.Context) error {
	if err := app.Table.Load(ctx); err != nil {
		return err
	}
	app.Metrics.Synced(app.Table.Len())
	return nil
}

// Shutdown stops background work and drains in-flight forwards. The HTTP
// server must already be stopped.
func (app *App) Shutdown(ctx context.Context) error {
	if app.scheduler != nil {
		<-app.scheduler.Stop().Done()
	}
	if app.cancel != nil {
		app.cancel()
		<-app.done
	}

	err := app.Dispatcher.Shutdown(ctx)
	if err != nil {
		app.Logger.Warn("Forwards cancelled at shutdown deadline", logging.Err(err))
	}

	app.closeStore()
	return err
}

func (app *App) closeStore() {
	if app.Store == nil {
		return
	}
	if err := app.Store.Close(); err != nil {
		app.Logger.Warn("Failed to close route store", logging.Err(err))
	}
}
