// Package registry holds the startup-built, read-only mapping from database
// name to store handle.
//
// A Registry is created exactly once, before the HTTP listener accepts any
// connection, from the ordered list of configured databases. Construction
// fails fast with a *ConfigError when a name is empty, not URI-safe or
// duplicated, or when a database cannot be opened; in that case every handle
// opened so far is closed again and the process must not start serving.
//
// After New returns, the registry is never mutated. Lookup, Names and
// Databases may be called from any number of goroutines without locking.
// Close flushes and closes all handles and is meant for graceful shutdown,
// after in-flight requests have drained.
package registry
