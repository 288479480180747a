package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"webhook-fanout/internal/common/errors"
)

// Route target management handlers

type targetRequest struct {
	URL string `json:"url"`
}

type targetResponse struct {
	RouteID string `json:"route_id"`
	URL     string `json:"url"`
}

type removeResponse struct {
	RouteID string `json:"route_id"`
	URL     string `json:"url"`
	Removed int    `json:"removed"`
}

type targetsResponse struct {
	RouteID string   `json:"route_id"`
	Targets []string `json:"targets"`
}

type routesResponse struct {
	Routes map[string][]string `json:"routes"`
}

// AddTarget registers a target URL under a route
// @Summary Add route target
// @Description Appends a target URL to a route, creating the route if needed. Duplicates are kept.
// @Tags routes
// @Accept json
// @Produce json
// @Param id path string true "Route ID"
// @Param target body targetRequest true "Target URL"
// @Success 201 {object} targetResponse "Target added"
// @Failure 400 {object} errorResponse "Invalid JSON or target URL"
// @Failure 500 {object} errorResponse "Route store failure"
// @Router /api/routes/{id}/targets [post]
func (h *Handlers) AddTarget(w http.ResponseWriter, r *http.Request) {
	routeID := mux.Vars(r)["id"]

	var req targetRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, r, errors.ValidationError("invalid JSON body"))
		return
	}

	if err := h.table.Add(r.Context(), routeID, req.URL); err != nil {
		writeError(w, r, err)
		return
	}
	h.notifyRoutesChanged()

	writeJSON(w, http.StatusCreated, targetResponse{RouteID: routeID, URL: req.URL})
}

// RemoveTarget removes every occurrence of a target URL from a route
// @Summary Remove route target
// @Description Removes all occurrences of a target URL. Unknown routes or targets remove nothing.
// @Tags routes
// @Accept json
// @Produce json
// @Param id path string true "Route ID"
// @Param url query string false "Target URL (alternative to the JSON body)"
// @Param target body targetRequest false "Target URL"
// @Success 200 {object} removeResponse "Number of entries removed"
// @Failure 400 {object} errorResponse "Missing target URL"
// @Failure 500 {object} errorResponse "Route store failure"
// @Router /api/routes/{id}/targets [delete]
func (h *Handlers) RemoveTarget(w http.ResponseWriter, r *http.Request) {
	routeID := mux.Vars(r)["id"]

	target := r.URL.Query().Get("url")
	if target == "" {
		var req targetRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil && err != io.EOF {
			writeError(w, r, errors.ValidationError("invalid JSON body"))
			return
		}
		target = req.URL
	}
	if target == "" {
		writeError(w, r, errors.ValidationError("target url is required"))
		return
	}

	removed, err := h.table.Remove(r.Context(), routeID, target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if removed > 0 {
		h.notifyRoutesChanged()
	}

	writeJSON(w, http.StatusOK, removeResponse{RouteID: routeID, URL: target, Removed: removed})
}

// ListTargets returns the targets of a route
// @Summary List route targets
// @Description Returns the targets of a route in insertion order; unknown routes have none.
// @Tags routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} targetsResponse "Route targets"
// @Router /api/routes/{id}/targets [get]
func (h *Handlers) ListTargets(w http.ResponseWriter, r *http.Request) {
	routeID := mux.Vars(r)["id"]
	writeJSON(w, http.StatusOK, targetsResponse{RouteID: routeID, Targets: h.table.List(routeID)})
}

// ListRoutes returns the whole routing table
// @Summary List routes
// @Description Returns every route with its targets, including routes whose targets were all removed.
// @Tags routes
// @Produce json
// @Success 200 {object} routesResponse "Routing table"
// @Router /api/routes [get]
func (h *Handlers) ListRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, routesResponse{Routes: h.table.Routes()})
}
