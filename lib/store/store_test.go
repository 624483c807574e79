package store

import (
	"errors"
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/ValentinKolb/kvapp/lib/db/engines/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// brokenDB fails every operation like an engine with a corrupted file
type brokenDB struct{ err error }

func (b brokenDB) Put(string, []byte) ([]byte, bool, error) { return nil, false, b.err }
func (b brokenDB) Delete(string) (bool, error)              { return false, b.err }
func (b brokenDB) Get(string) ([]byte, bool, error)         { return nil, false, b.err }
func (b brokenDB) Flush() error                             { return b.err }
func (b brokenDB) GetInfo() db.DatabaseInfo                 { return db.DatabaseInfo{DbType: "broken"} }
func (b brokenDB) Close() error                             { return nil }

func TestHandleRoundTrip(t *testing.T) {
	h := New("db", "", memory.NewMemoryDB())
	defer h.Close()

	assert.Equal(t, "db", h.Name())
	assert.Equal(t, db.ImplMemory, h.Kind())

	_, replaced, err := h.Put("age", []byte("25"))
	require.NoError(t, err)
	assert.False(t, replaced)

	prev, replaced, err := h.Put("age", []byte("26"))
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, []byte("25"), prev)

	v, found, err := h.Get("age")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("26"), v)

	removed, err := h.Delete("age")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = h.Delete("age")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, h.Flush())
}

func TestHandleEmptyKey(t *testing.T) {
	h := New("db", "", memory.NewMemoryDB())
	defer h.Close()

	_, _, err := h.Get("")
	assert.True(t, IsCode(err, RetCInvalidKey))
	_, _, err = h.Put("", []byte("v"))
	assert.True(t, IsCode(err, RetCInvalidKey))
	_, err = h.Delete("")
	assert.True(t, IsCode(err, RetCInvalidKey))
}

func TestHandleEngineError(t *testing.T) {
	cause := errors.New("checksum mismatch")
	h := New("broken", "/nowhere", brokenDB{err: cause})

	_, _, err := h.Put("k", []byte("v"))
	require.Error(t, err)

	var sErr *Error
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, RetCInternalError, sErr.Code)
	assert.Equal(t, "put", sErr.Op)
	assert.Equal(t, "broken", sErr.Database)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "InternalError")

	_, _, err = h.Get("k")
	assert.True(t, IsCode(err, RetCInternalError))
	_, err = h.Delete("k")
	assert.True(t, IsCode(err, RetCInternalError))
	assert.True(t, IsCode(h.Flush(), RetCInternalError))
}

func TestHandleClosed(t *testing.T) {
	h := New("db", "", memory.NewMemoryDB())
	require.NoError(t, h.Close())

	_, _, err := h.Get("k")
	assert.True(t, IsCode(err, RetCClosed))
	assert.ErrorIs(t, err, db.ErrClosed)
}

func TestOpenUnknownEngine(t *testing.T) {
	_, err := Open("db", t.TempDir(), "rocksdb")
	assert.Error(t, err)
}
