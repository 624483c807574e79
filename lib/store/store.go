package store

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/ValentinKolb/kvapp/lib/db/engines"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

// --------------------------------------------------------------------------
// Store Handle
// --------------------------------------------------------------------------

// Handle binds one engine instance to the database name and path it serves.
// It adds no locking of its own; the engine is responsible for concurrency.
type Handle struct {
	name string
	path string
	kind db.Implementation
	db   db.KVDB
}

// Open opens the engine of the given kind at path and wraps it in a Handle.
func Open(name, path string, kind db.Implementation) (*Handle, error) {
	database, err := engines.Open(kind, path)
	if err != nil {
		return nil, err
	}
	Logger.Infof("opened %s database %q at %s", kind, name, path)
	return New(name, path, database), nil
}

// New wraps an already opened engine.
func New(name, path string, database db.KVDB) *Handle {
	return &Handle{
		name: name,
		path: path,
		kind: database.GetInfo().DbType,
		db:   database,
	}
}

func (h *Handle) Name() string { return h.name }

func (h *Handle) Path() string { return h.path }

func (h *Handle) Kind() db.Implementation { return h.kind }

// Get returns the value for key. found is false if the key does not exist.
func (h *Handle) Get(key string) (value []byte, found bool, err error) {
	if key == "" {
		return nil, false, h.newError("get", RetCInvalidKey, errEmptyKey)
	}
	value, found, err = h.db.Get(key)
	if err != nil {
		return nil, false, h.wrap("get", err)
	}
	return value, found, nil
}

// Put inserts or overwrites the value for key and returns the value it replaced, if any.
func (h *Handle) Put(key string, value []byte) (previous []byte, replaced bool, err error) {
	if key == "" {
		return nil, false, h.newError("put", RetCInvalidKey, errEmptyKey)
	}
	previous, replaced, err = h.db.Put(key, value)
	if err != nil {
		return nil, false, h.wrap("put", err)
	}
	return previous, replaced, nil
}

// Delete removes key and reports whether it existed.
func (h *Handle) Delete(key string) (removed bool, err error) {
	if key == "" {
		return false, h.newError("delete", RetCInvalidKey, errEmptyKey)
	}
	removed, err = h.db.Delete(key)
	if err != nil {
		return false, h.wrap("delete", err)
	}
	return removed, nil
}

// Flush asks the engine to make buffered writes durable. Best effort.
func (h *Handle) Flush() error {
	if err := h.db.Flush(); err != nil {
		return h.wrap("flush", err)
	}
	return nil
}

// Close releases the engine.
func (h *Handle) Close() error {
	if err := h.db.Close(); err != nil {
		return h.wrap("close", err)
	}
	return nil
}

// Info returns metadata about the underlying engine.
// It is not guaranteed that all fields are filled in or that the information is up-to-date!
func (h *Handle) Info() db.DatabaseInfo {
	return h.db.GetInfo()
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

var errEmptyKey = errors.New("key must not be empty")

// Error is a custom error type that wraps a return code (of type RetCode),
// the failed operation and the engine error.
type Error struct {
	Code     RetCode // The return code
	Op       string  // The failed operation (get, put, delete, flush, close)
	Database string  // Name of the database the operation targeted
	Err      error   // The engine error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s on database %q: %v", e.Code, e.Op, e.Database, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new StoreError with the given code and cause.
func NewError(code RetCode, op, database string, err error) *Error {
	return &Error{
		Code:     code,
		Op:       op,
		Database: database,
		Err:      err,
	}
}

// IsCode reports whether err is a *Error carrying code.
func IsCode(err error, code RetCode) bool {
	var sErr *Error
	return errors.As(err, &sErr) && sErr.Code == code
}

func (h *Handle) newError(op string, code RetCode, err error) *Error {
	return NewError(code, op, h.name, err)
}

func (h *Handle) wrap(op string, err error) *Error {
	if errors.Is(err, db.ErrClosed) {
		return h.newError(op, RetCClosed, err)
	}
	return h.newError(op, RetCInternalError, err)
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Operation executed successfully.
	RetCInternalError                // 1: Engine failure (I/O, corruption).
	RetCClosed                       // 2: The database was already closed.
	RetCInvalidKey                   // 3: The key is not acceptable.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCClosed:
		return "Closed"
	case RetCInvalidKey:
		return "InvalidKey"
	default:
		return "Unknown"
	}
}
