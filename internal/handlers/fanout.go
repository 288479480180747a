package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"webhook-fanout/internal/fanout"
)

type fanoutResponse struct {
	Status     string `json:"status"`
	RouteID    string `json:"route_id"`
	Targets    int    `json:"targets"`
	DispatchID string `json:"dispatch_id"`
}

// HandleFanout replays the request to every target of a route
// @Summary Fan out a request
// @Description Captures the request and forwards a copy to every target of the route without waiting for them.
// @Description Anything after the route ID is appended to each target URL, as is the query string.
// @Tags fanout
// @Accept */*
// @Produce json
// @Param id path string true "Route ID"
// @Param suffix path string false "Path suffix appended to each target"
// @Success 202 {object} fanoutResponse "Queued for delivery"
// @Failure 404 {object} errorResponse "Route not found or has no targets"
// @Failure 413 {object} errorResponse "Body too large"
// @Failure 503 {object} errorResponse "Shutting down"
// @Router /fanout/{id} [post]
// @Router /fanout/{id}/{suffix} [post]
func (h *Handlers) HandleFanout(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	routeID := vars["id"]

	env, err := fanout.NewEnvelope(r, vars["suffix"], h.maxBody)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ack := h.dispatcher.Dispatch(routeID, env)
	switch ack.Status {
	case fanout.StatusNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	case fanout.StatusClosed:
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "shutting down"})
	default:
		writeJSON(w, http.StatusAccepted, fanoutResponse{
			Status:     "queued",
			RouteID:    routeID,
			Targets:    ack.Targets,
			DispatchID: ack.DispatchID,
		})
	}
}
