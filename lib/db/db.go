package db

import "errors"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplBadger Implementation = "badger"
	ImplBolt   Implementation = "bolt"
	ImplMemory Implementation = "memory"
)

// Implementations lists every engine kind that can back a database.
var Implementations = []Implementation{ImplBadger, ImplBolt, ImplMemory}

// Valid reports whether the implementation names a known engine.
func (i Implementation) Valid() bool {
	for _, impl := range Implementations {
		if impl == i {
			return true
		}
	}
	return false
}

// Persistent reports whether the engine keeps its data on disk.
func (i Implementation) Persistent() bool {
	return i == ImplBadger || i == ImplBolt
}

type DatabaseInfo struct {
	DbType   Implementation `json:"db_type"`
	Path     string         `json:"path,omitempty"`
	Metadata interface{}    `json:"metadata,omitempty"`
}

// ErrClosed is returned by every operation on an engine after Close.
var ErrClosed = errors.New("database is closed")

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for an embedded key-value engine bound to one path.
// Implementations must be safe for concurrent use. Single-key operations are
// atomic with respect to each other; the engine owns its concurrency control.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Put inserts or overwrites the value for key.
	// If the key existed, its previous value is returned with replaced=true.
	Put(key string, value []byte) (previous []byte, replaced bool, err error)

	// Delete removes the key. removed is false if the key did not exist.
	Delete(key string) (removed bool, err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The returned slice is owned by the caller.
	Get(key string) (value []byte, loaded bool, err error)

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Flush forces buffered writes to durable storage.
	// Engines without a durability layer return nil.
	Flush() (err error)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close releases the engine. Further calls return ErrClosed.
	Close() (err error)
}
