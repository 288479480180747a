package routing

import "context"

// Store persists the whole routing table.
//
// Save receives a private copy of the table and must write all of it; there
// is no incremental persistence. Load returns route identifiers mapped to
// target lists in insertion order.
type Store interface {
	Load(ctx context.Context) (map[string][]string, error)
	Save(ctx context.Context, routes map[string][]string) error
	Close() error
}

// Watcher is implemented by stores that can notice edits made outside this
// process. Watch blocks until ctx is done, calling onChange after each
// external change.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// HealthChecker is implemented by stores backed by a remote service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// CloneRoutes deep-copies a routes map. Nil lists become empty lists.
func CloneRoutes(routes map[string][]string) map[string][]string {
	out := make(map[string][]string, len(routes))
	for id, targets := range routes {
		out[id] = append(make([]string, 0, len(targets)), targets...)
	}
	return out
}
