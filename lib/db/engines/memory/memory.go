package memory

import (
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/puzpuzpuz/xsync/v3"
	"sync/atomic"
)

// memoryImpl is a volatile engine backed by a concurrent hash map.
// Nothing survives Close; it is meant for tests and scratch databases.
type memoryImpl struct {
	data   *xsync.MapOf[string, []byte]
	closed atomic.Bool
}

// NewMemoryDB creates an empty in-memory engine
func NewMemoryDB() db.KVDB {
	return &memoryImpl{
		data: xsync.NewMapOf[string, []byte](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/db.go)
// --------------------------------------------------------------------------

func (m *memoryImpl) Get(key string) ([]byte, bool, error) {
	if m.closed.Load() {
		return nil, false, db.ErrClosed
	}
	v, ok := m.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (m *memoryImpl) Put(key string, value []byte) ([]byte, bool, error) {
	if m.closed.Load() {
		return nil, false, db.ErrClosed
	}
	previous, replaced := m.data.LoadAndStore(key, clone(value))
	return previous, replaced, nil
}

func (m *memoryImpl) Delete(key string) (bool, error) {
	if m.closed.Load() {
		return false, db.ErrClosed
	}
	_, removed := m.data.LoadAndDelete(key)
	return removed, nil
}

func (m *memoryImpl) Flush() error {
	if m.closed.Load() {
		return db.ErrClosed
	}
	return nil
}

func (m *memoryImpl) GetInfo() db.DatabaseInfo {
	return db.DatabaseInfo{
		DbType:   db.ImplMemory,
		Metadata: map[string]int{"keys": m.data.Size()},
	}
}

func (m *memoryImpl) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return db.ErrClosed
	}
	m.data.Clear()
	return nil
}

// clone copies b so callers never share memory with the map
func clone(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
