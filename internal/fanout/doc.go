// Package fanout replays one inbound HTTP request to every target of a route.
//
// An Envelope captures the inbound request once. The Dispatcher takes a
// snapshot of the route's targets, acknowledges the caller and then runs one
// Forwarder call per target in its own goroutine. Forwards share nothing but
// the HTTP client and never report back to the caller; each outcome goes to a
// Sink.
//
// Delivery is best effort. There are no retries and no ordering between
// targets, and a slow or failing target never affects its siblings.
package fanout
