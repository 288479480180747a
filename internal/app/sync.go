package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"webhook-fanout/internal/common/logging"
	"webhook-fanout/internal/config"
	"webhook-fanout/internal/routing"
)

// startWatch reloads the table whenever the store reports an external change.
func (app *App) startWatch(ctx context.Context) {
	watcher, ok := app.Store.(routing.Watcher)
	if !ok || !app.watchEnabled() {
		close(app.done)
		return
	}

	go func() {
		defer close(app.done)

		app.Logger.Info("Watching route store for changes", logging.String("type", app.Config.StoreType))
		err := watcher.Watch(ctx, func() {
			reloadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := app.reload(reloadCtx); err != nil {
				app.Logger.Error("Failed to reload routes", err)
			}
		})
		if err != nil {
			app.Logger.Error("Route store watch stopped", err)
		}
	}()
}

// watchEnabled reports whether change notifications should be followed.
// File watching is opt-in; redis notifications are always followed.
func (app *App) watchEnabled() bool {
	switch app.Config.StoreType {
	case config.StoreFile:
		return app.Config.RoutesFileWatch
	default:
		return true
	}
}

// startResync schedules periodic reloads from the store.
func (app *App) startResync() error {
	if app.Config.ResyncSchedule == "" || app.Store == nil {
		return nil
	}

	cronLogger := cronLogAdapter{logger: app.Logger}
	app.scheduler = cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		cron.WithLogger(cronLogger),
	)

	_, err := app.scheduler.AddFunc(app.Config.ResyncSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.reload(ctx); err != nil {
			app.Logger.Error("Scheduled route resync failed", err)
			return
		}
		app.Logger.Debug("Routes resynced", logging.Int("routes", app.Table.Len()))
	})
	if err != nil {
		return fmt.Errorf("invalid resync schedule: %w", err)
	}

	app.scheduler.Start()
	app.Logger.Info("Scheduled route resync", logging.String("schedule", app.Config.ResyncSchedule))
	return nil
}

// cronLogAdapter satisfies cron.Logger.
type cronLogAdapter struct {
	logger logging.Logger
}

func (c cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debug("cron: "+msg, keyValueFields(keysAndValues)...)
}

func (c cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Error("cron: "+msg, err, keyValueFields(keysAndValues)...)
}

func keyValueFields(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}
