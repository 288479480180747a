package fanout

import (
	"context"
	"sync"

	"github.com/lucsky/cuid"

	"webhook-fanout/internal/common/logging"
)

// Status is the caller-visible result of a dispatch.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusNotFound Status = "not_found"
	// StatusClosed is returned once Shutdown has started.
	StatusClosed Status = "closed"
)

// Ack is returned to the caller as soon as the target snapshot is taken.
type Ack struct {
	DispatchID string
	RouteID    string
	Status     Status
	Targets    int

	done chan struct{}
}

// Done is closed once every forward of this dispatch has finished.
// It is closed immediately for a not_found dispatch.
func (a Ack) Done() <-chan struct{} {
	return a.done
}

// Snapshotter provides the dispatch read barrier.
type Snapshotter interface {
	SnapshotForDispatch(routeID string) []string
}

// Dispatcher fans envelopes out to route targets.
type Dispatcher struct {
	routes    Snapshotter
	forwarder *Forwarder
	sink      Sink
	logger    logging.Logger

	// base outlives inbound requests; cancelled by Shutdown
	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex // guards closed and wg.Add
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. sink may be nil.
func NewDispatcher(routes Snapshotter, forwarder *Forwarder, sink Sink, logger logging.Logger) *Dispatcher {
	if sink == nil {
		sink = nopSink{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		routes:    routes,
		forwarder: forwarder,
		sink:      sink,
		logger:    logger.WithFields(logging.String("component", "dispatcher")),
		base:      base,
		cancel:    cancel,
	}
}

// Dispatch snapshots the targets of routeID and starts one forward per target
// without waiting for any of them. An unknown or empty route yields
// StatusNotFound and no forwards.
func (d *Dispatcher) Dispatch(routeID string, env *Envelope) Ack {
	targets := d.routes.SnapshotForDispatch(routeID)

	ack := Ack{
		DispatchID: cuid.New(),
		RouteID:    routeID,
		Targets:    len(targets),
		done:       make(chan struct{}),
	}

	if len(targets) == 0 {
		ack.Status = StatusNotFound
		close(ack.done)
		d.sink.RecordDispatch(ack)
		return ack
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		ack.Status = StatusClosed
		close(ack.done)
		d.sink.RecordDispatch(ack)
		return ack
	}
	d.wg.Add(len(targets))
	d.mu.Unlock()

	ack.Status = StatusAccepted
	d.sink.RecordDispatch(ack)

	ctx := logging.ContextWithDispatchID(d.base, ack.DispatchID)

	var group sync.WaitGroup
	group.Add(len(targets))
	for _, target := range targets {
		go func(target string) {
			defer d.wg.Done()
			defer group.Done()

			outcome := d.forwarder.Forward(ctx, routeID, target, env)
			outcome.DispatchID = ack.DispatchID
			d.sink.RecordOutcome(outcome)
		}(target)
	}

	go func() {
		group.Wait()
		close(ack.done)
	}()

	return ack
}

// Shutdown stops accepting dispatches and waits for in-flight forwards. If ctx ends first the remaining
// forwards are cancelled and ctx.Err() is returned once they have stopped.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.logger.Warn("Shutdown deadline reached, cancelling in-flight forwards")
		d.cancel()
		<-drained
		return ctx.Err()
	}
}
