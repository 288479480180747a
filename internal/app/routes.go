package app

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "webhook-fanout/docs"
	"webhook-fanout/internal/handlers"
	"webhook-fanout/internal/middleware"
)

// fanoutMethods are the inbound methods replayed to targets.
var fanoutMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// SetupRoutes configures all HTTP routes for the application.
// metricsHandler may be nil.
func SetupRoutes(router *mux.Router, h *handlers.Handlers, metricsHandler http.Handler) {
	// suffixes are forwarded verbatim, so unclean paths must not be redirected
	router.SkipClean(true)

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/routes", h.ListRoutes).Methods("GET")
	api.HandleFunc("/routes/{id}/targets", h.ListTargets).Methods("GET")
	api.HandleFunc("/routes/{id}/targets", h.AddTarget).Methods("POST")
	api.HandleFunc("/routes/{id}/targets", h.RemoveTarget).Methods("DELETE")

	router.HandleFunc("/fanout/{id}", h.HandleFanout).Methods(fanoutMethods...)
	router.HandleFunc("/fanout/{id}/{suffix:.*}", h.HandleFanout).Methods(fanoutMethods...)
}

// Router builds the application's HTTP handler.
func (app *App) Router() *mux.Router {
	router := mux.NewRouter()

	var metricsHandler http.Handler
	if app.Config.MetricsEnabled {
		metricsHandler = app.Metrics.Handler
	}

	SetupRoutes(router, app.Handlers, metricsHandler)
	return router
}
