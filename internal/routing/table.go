package routing

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"webhook-fanout/internal/common/errors"
	"webhook-fanout/internal/common/logging"
)

// Table is the concurrency-safe routing table.
type Table struct {
	mu     sync.RWMutex
	routes map[string][]string // replaced wholesale, slices never mutated in place

	// writeMu serializes mutations and store I/O; readers never take it
	writeMu sync.Mutex

	store  Store
	logger logging.Logger
}

// NewTable creates an empty table. store may be nil for a memory-only table.
func NewTable(store Store, logger logging.Logger) *Table {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Table{
		routes: make(map[string][]string),
		store:  store,
		logger: logger.WithFields(logging.String("component", "routing_table")),
	}
}

// Load replaces the table with the contents of the store.
// It is a no-op for a memory-only table.
func (t *Table) Load(ctx context.Context) error {
	if t.store == nil {
		return nil
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	routes, err := t.store.Load(ctx)
	if err != nil {
		return errors.StorageError("failed to load routes", err)
	}

	next := CloneRoutes(routes)
	t.swap(next)

	t.logger.Info("Routes loaded",
		logging.Int("routes", len(next)),
		logging.Int("targets", countTargets(next)),
	)
	return nil
}

// Add appends target to routeID, creating the route if needed.
// Adding the same target twice yields two entries.
func (t *Table) Add(ctx context.Context, routeID, target string) error {
	if err := ValidateRouteID(routeID); err != nil {
		return err
	}
	if err := ValidateTarget(target); err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current := t.current()
	list := current[routeID]

	updated := make([]string, len(list), len(list)+1)
	copy(updated, list)
	updated = append(updated, target)

	next := withRoute(current, routeID, updated)
	if err := t.persist(ctx, next); err != nil {
		return err
	}
	t.swap(next)

	t.logger.Info("Target added",
		logging.String("route_id", routeID),
		logging.String("url", target),
		logging.Int("targets", len(updated)),
	)
	return nil
}

// Remove deletes every occurrence of target from routeID and reports how many
// were removed. Unknown routes and targets are a no-op.
func (t *Table) Remove(ctx context.Context, routeID, target string) (int, error) {
	if err := ValidateRouteID(routeID); err != nil {
		return 0, err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current := t.current()
	list, ok := current[routeID]
	if !ok {
		return 0, nil
	}

	updated := make([]string, 0, len(list))
	for _, existing := range list {
		if existing != target {
			updated = append(updated, existing)
		}
	}

	removed := len(list) - len(updated)
	if removed == 0 {
		return 0, nil
	}

	next := withRoute(current, routeID, updated)
	if err := t.persist(ctx, next); err != nil {
		return 0, err
	}
	t.swap(next)

	t.logger.Info("Target removed",
		logging.String("route_id", routeID),
		logging.String("url", target),
		logging.Int("removed", removed),
		logging.Int("targets", len(updated)),
	)
	return removed, nil
}

// List returns a copy of the targets of routeID, empty if unknown.
func (t *Table) List(routeID string) []string {
	t.mu.RLock()
	list := t.routes[routeID]
	t.mu.RUnlock()

	return append(make([]string, 0, len(list)), list...)
}

// SnapshotForDispatch is the dispatch read barrier: a consistent copy of the
// targets of routeID as of one instant.
func (t *Table) SnapshotForDispatch(routeID string) []string {
	return t.List(routeID)
}

// Routes returns a deep copy of the whole table, empty routes included.
func (t *Table) Routes() map[string][]string {
	return CloneRoutes(t.current())
}

// Len returns the number of routes, empty routes included.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

func (t *Table) current() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.routes
}

func (t *Table) swap(next map[string][]string) {
	t.mu.Lock()
	t.routes = next
	t.mu.Unlock()
}

func (t *Table) persist(ctx context.Context, next map[string][]string) error {
	if t.store == nil {
		return nil
	}
	if err := t.store.Save(ctx, CloneRoutes(next)); err != nil {
		t.logger.Error("Failed to persist routes", err, logging.Int("routes", len(next)))
		return errors.StorageError("failed to persist routes", err)
	}
	return nil
}

// withRoute returns a shallow copy of routes with routeID set to list.
func withRoute(routes map[string][]string, routeID string, list []string) map[string][]string {
	next := make(map[string][]string, len(routes)+1)
	for id, targets := range routes {
		next[id] = targets
	}
	next[routeID] = list
	return next
}

func countTargets(routes map[string][]string) int {
	n := 0
	for _, targets := range routes {
		n += len(targets)
	}
	return n
}

// ValidateRouteID checks that id can be used as a single URL path segment.
func ValidateRouteID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.ValidationError("route id is required")
	}
	if strings.Contains(id, "/") {
		return errors.ValidationError("route id must be a single path segment").
			WithContext("route_id", id)
	}
	return nil
}

// ValidateTarget checks that target is an absolute http or https URL.
func ValidateTarget(target string) error {
	if target == "" {
		return errors.ValidationError("target url is required")
	}

	u, err := url.Parse(target)
	if err != nil {
		return errors.ValidationError("target url is malformed").WithContext("url", target)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.ValidationError("target url must use http or https").WithContext("url", target)
	}
	if u.Host == "" {
		return errors.ValidationError("target url must include a host").WithContext("url", target)
	}
	return nil
}
