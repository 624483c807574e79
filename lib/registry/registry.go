package registry

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/ValentinKolb/kvapp/lib/store"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

var Logger = logger.GetLogger("registry")

// OpenFunc opens the store handle for one configured database
type OpenFunc func(cfg common.DatabaseConfig) (*store.Handle, error)

// Database is one entry of the registry
type Database struct {
	Name   string
	Path   string
	Engine db.Implementation
	Handle *store.Handle
}

// Registry maps database names to their store handles.
// It is built once by New and never mutated afterwards, so concurrent
// lookups need no locking.
type Registry struct {
	ordered   []Database
	byName    map[string]*store.Handle
	closeOnce sync.Once
	closeErr  error
}

// New opens every configured database with the default engines.
func New(entries []common.DatabaseConfig) (*Registry, error) {
	return NewWithOpener(entries, func(cfg common.DatabaseConfig) (*store.Handle, error) {
		return store.Open(cfg.Name, cfg.Path, cfg.Engine)
	})
}

// NewWithOpener builds the registry in configuration order.
// It fails fast on an empty, malformed or duplicate name and on the first
// database that cannot be opened; handles opened up to that point are closed.
func NewWithOpener(entries []common.DatabaseConfig, open OpenFunc) (*Registry, error) {
	if len(entries) == 0 {
		return nil, &ConfigError{Reason: "no databases configured"}
	}

	// validate all names before touching the filesystem
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		switch {
		case entry.Name == "":
			return nil, &ConfigError{Index: i, Reason: "database name must not be empty"}
		case !common.ValidDatabaseName(entry.Name):
			return nil, &ConfigError{Index: i, Name: entry.Name, Reason: "database name is not URI-safe"}
		}
		if _, dup := seen[entry.Name]; dup {
			return nil, &ConfigError{Index: i, Name: entry.Name, Reason: "duplicate database name"}
		}
		seen[entry.Name] = struct{}{}
	}

	r := &Registry{
		ordered: make([]Database, 0, len(entries)),
		byName:  make(map[string]*store.Handle, len(entries)),
	}

	for i, entry := range entries {
		handle, err := open(entry)
		if err != nil {
			_ = r.Close()
			return nil, &ConfigError{Index: i, Name: entry.Name, Reason: fmt.Sprintf("cannot open %s", entry.Path), Err: err}
		}

		r.ordered = append(r.ordered, Database{
			Name:   entry.Name,
			Path:   entry.Path,
			Engine: handle.Kind(),
			Handle: handle,
		})
		r.byName[entry.Name] = handle
		Logger.Infof("registered database %q (%s)", entry.Name, handle.Kind())
	}

	return r, nil
}

// Lookup returns the store handle registered under name.
//
// Thread-safety: safe for concurrent use, the map is never written after New.
func (r *Registry) Lookup(name string) (*store.Handle, bool) {
	h, ok := r.byName[name]
	return h, ok
}

// Names returns the configured database names in configuration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i, d := range r.ordered {
		names[i] = d.Name
	}
	return names
}

// Databases returns a copy of the registry entries in configuration order.
func (r *Registry) Databases() []Database {
	out := make([]Database, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered databases.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Flush flushes every handle and returns all failures joined.
func (r *Registry) Flush() error {
	var errs []error
	for _, d := range r.ordered {
		if err := d.Handle.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes and closes every handle. Only the first call does any work.
// Must not be called while requests are still in flight.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		var errs []error
		for _, d := range r.ordered {
			if err := d.Handle.Flush(); err != nil {
				Logger.Warningf("flush of database %q failed: %v", d.Name, err)
				errs = append(errs, err)
			}
			if err := d.Handle.Close(); err != nil {
				Logger.Errorf("close of database %q failed: %v", d.Name, err)
				errs = append(errs, err)
				continue
			}
			Logger.Infof("closed database %q", d.Name)
		}
		r.closeErr = errors.Join(errs...)
	})
	return r.closeErr
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// ConfigError reports a configuration entry the registry could not accept.
type ConfigError struct {
	Index  int    // position of the entry in the configuration
	Name   string // database name, empty if the name itself is the problem
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error in database #%d", e.Index)
	if e.Name != "" {
		msg = fmt.Sprintf("config error in database %q", e.Name)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
