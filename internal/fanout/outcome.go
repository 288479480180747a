package fanout

import (
	"time"

	"webhook-fanout/internal/common/logging"
)

// OutcomeKind classifies a finished forward.
type OutcomeKind string

const (
	// OutcomeDelivered means the target answered 2xx.
	OutcomeDelivered OutcomeKind = "delivered"
	// OutcomeRejected means the target answered with any other status.
	OutcomeRejected OutcomeKind = "rejected"
	// OutcomeFailed means no response was received.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome describes one forward. It is only ever seen by a Sink.
type Outcome struct {
	DispatchID string
	RouteID    string
	Target     string
	URL        string
	Method     string
	Kind       OutcomeKind
	StatusCode int
	Err        error
	Duration   time.Duration
}

// Sink observes dispatches and forward outcomes.
// Implementations must be safe for concurrent use and must not block.
type Sink interface {
	RecordDispatch(ack Ack)
	RecordOutcome(outcome Outcome)
}

// MultiSink fans records out to several sinks.
type MultiSink []Sink

func (m MultiSink) RecordDispatch(ack Ack) {
	for _, s := range m {
		s.RecordDispatch(ack)
	}
}

func (m MultiSink) RecordOutcome(outcome Outcome) {
	for _, s := range m {
		s.RecordOutcome(outcome)
	}
}

// LogSink writes dispatches and outcomes to a Logger.
type LogSink struct {
	logger logging.Logger
}

// NewLogSink creates a sink logging through logger.
func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.WithFields(logging.String("component", "fanout"))}
}

func (s *LogSink) RecordDispatch(ack Ack) {
	fields := []logging.Field{
		logging.String("dispatch_id", ack.DispatchID),
		logging.String("route_id", ack.RouteID),
		logging.String("status", string(ack.Status)),
		logging.Int("targets", ack.Targets),
	}
	switch ack.Status {
	case StatusNotFound:
		s.logger.Warn("Dispatch for unknown route", fields...)
	case StatusClosed:
		s.logger.Warn("Dispatch refused during shutdown", fields...)
	default:
		s.logger.Info("Dispatch accepted", fields...)
	}
}

func (s *LogSink) RecordOutcome(o Outcome) {
	fields := []logging.Field{
		logging.String("dispatch_id", o.DispatchID),
		logging.String("route_id", o.RouteID),
		logging.String("method", o.Method),
		logging.String("url", o.URL),
		logging.String("outcome", string(o.Kind)),
		logging.Duration("duration", o.Duration),
	}

	switch o.Kind {
	case OutcomeFailed:
		s.logger.Error("Forward failed", o.Err, fields...)
	case OutcomeRejected:
		s.logger.Warn("Forward rejected", append(fields, logging.Int("status_code", o.StatusCode))...)
	default:
		s.logger.Info("Forward delivered", append(fields, logging.Int("status_code", o.StatusCode))...)
	}
}

type nopSink struct{}

func (nopSink) RecordDispatch(Ack)     {}
func (nopSink) RecordOutcome(Outcome) {}
