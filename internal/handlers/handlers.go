package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"webhook-fanout/internal/common/errors"
	"webhook-fanout/internal/common/logging"
	"webhook-fanout/internal/fanout"
	"webhook-fanout/internal/routing"
)

type Handlers struct {
	table      *routing.Table
	dispatcher *fanout.Dispatcher
	store      routing.Store
	maxBody    int64

	routesChanged func(routes int)
}

// Option customizes Handlers.
type Option func(*Handlers)

// WithStore lets the health check report on store connectivity.
func WithStore(store routing.Store) Option {
	return func(h *Handlers) { h.store = store }
}

// WithRoutesObserver is called with the route count after each mutation.
func WithRoutesObserver(fn func(routes int)) Option {
	return func(h *Handlers) { h.routesChanged = fn }
}

func New(table *routing.Table, dispatcher *fanout.Dispatcher, maxBody int64, opts ...Option) *Handlers {
	h := &Handlers{
		table:      table,
		dispatcher: dispatcher,
		maxBody:    maxBody,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
	Routes int    `json:"routes"`
	Store  string `json:"store,omitempty"`
}

// HealthCheck reports service health
// @Summary Health check
// @Description Returns the health status of the service and its route store
// @Tags system
// @Produce json
// @Success 200 {object} healthResponse "Healthy"
// @Failure 503 {object} healthResponse "Route store unreachable"
// @Router /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Routes: h.table.Len()}
	status := http.StatusOK

	if checker, ok := h.store.(routing.HealthChecker); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.Health(ctx); err != nil {
			logging.Warn("Route store health check failed", logging.Err(err))
			resp.Status = "degraded"
			resp.Store = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Store = "ok"
		}
	}

	writeJSON(w, status, resp)
}

func (h *Handlers) notifyRoutesChanged() {
	if h.routesChanged != nil {
		h.routesChanged(h.table.Len())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", err)
	}
}

// writeError maps err to a status code. Internal details of 5xx errors are
// logged, not returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	msg := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logging.GetGlobalLogger().WithContext(r.Context()).Error("Request failed", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
