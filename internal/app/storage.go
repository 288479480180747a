package app

import (
	"webhook-fanout/internal/common/logging"
	"webhook-fanout/internal/storage"

	// route store adapters register themselves with storage
	_ "webhook-fanout/internal/storage/file"
	_ "webhook-fanout/internal/storage/postgres"
	_ "webhook-fanout/internal/storage/redis"
	_ "webhook-fanout/internal/storage/sqlite"
)

// initializeStorage sets up the route store, if any
func (app *App) initializeStorage() error {
	store, err := storage.NewStorage(app.Config)
	if err != nil {
		return err
	}
	app.Store = store

	if store == nil {
		app.Logger.Warn("Using in-memory routes; changes are lost on restart")
		return nil
	}

	app.Logger.Info("Route store initialized",
		logging.String("type", app.Config.StoreType),
		logging.Any("available", storage.GetAvailableTypes()),
	)
	return nil
}
