// Package db provides a standardized interface for the embedded key-value
// engines that back kvapp databases. Each engine instance is bound to a single
// filesystem path and exposes point operations only.
//
// Key Components:
//
//   - KVDB Interface: The contract every engine satisfies (Get, Put, Delete,
//     Flush, Close). Put reports the previous value and Delete reports whether
//     anything was removed, so callers never need a read-modify-write of their own.
//
//   - Implementation Identifiers: The Implementation type names the available
//     engines ("badger", "bolt", "memory") and is used by configuration.
//
//   - ErrClosed: returned by every operation after Close.
//
// Concurrency:
//
//	Implementations must be safe for concurrent use from many goroutines. The
//	engine is responsible for its own locking; callers add none around
//	single-key operations. Concurrent writers to the same key race and the last
//	write wins.
//
// Related Packages:
//
// The engines packages (github.com/ValentinKolb/kvapp/lib/db/engines/...) provide
// the badger, bolt and in-memory implementations, and engines.Open selects one
// by Implementation.
//
// The testing package (github.com/ValentinKolb/kvapp/lib/db/testing) provides
// a conformance suite and benchmarks that every implementation runs.
package db
