// Package store provides the Store Handle: a thin adapter that binds one
// db.KVDB engine to the database name and filesystem path it serves.
//
// Key Components:
//
//   - Handle: Get, Put, Delete, Flush and Close over a single engine. Put
//     returns the value it replaced and Delete reports whether anything was
//     removed. The handle adds no locking; concurrent single-key operations go
//     straight to the engine, which owns its concurrency control.
//
//   - Error System: engine failures are wrapped in *Error carrying a RetCode,
//     the failed operation and the database name, so the HTTP layer can map
//     them to a 500 response and log them without inspecting engine internals.
//
// Handles are created once at startup by the registry and live until the
// process shuts down, at which point they are flushed and closed.
package store
