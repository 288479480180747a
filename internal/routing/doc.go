// Package routing holds the fan-out routing table: route identifiers mapped
// to ordered lists of target base URLs.
//
// # Overview
//
// The Table is the only state shared between administrative mutations and
// inbound fan-out traffic. It is copy-on-write: every mutation builds a new
// map with a fresh slice for the touched route and swaps it in under a short
// write lock, so readers never observe a partially mutated list and never
// wait on I/O.
//
// # Persistence
//
// A Table may be backed by a Store. Stores persist the whole table on every
// successful Add or Remove, before the in-memory table changes; a failed
// save leaves memory untouched and surfaces a storage error to the caller.
// Store I/O happens under a separate mutation lock that only writers take.
//
// # Empty routes
//
// Removing the last target of a route keeps the route with an empty list.
// List and Routes report it; the dispatcher treats an empty list exactly like
// an unknown route.
//
// # Usage
//
//	table := routing.NewTable(store, logger)
//	if err := table.Load(ctx); err != nil {
//		return err
//	}
//	_ = table.Add(ctx, "orders", "http://billing.internal/hooks")
//	targets := table.SnapshotForDispatch("orders")
package routing
