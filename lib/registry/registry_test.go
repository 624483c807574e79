package registry

import (
	"errors"
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/ValentinKolb/kvapp/lib/db/engines/memory"
	"github.com/ValentinKolb/kvapp/lib/store"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"sync"
	"testing"
)

func memoryOpener(opened *[]string) OpenFunc {
	return func(cfg common.DatabaseConfig) (*store.Handle, error) {
		*opened = append(*opened, cfg.Name)
		return store.New(cfg.Name, cfg.Path, memory.NewMemoryDB()), nil
	}
}

func memEntries(names ...string) []common.DatabaseConfig {
	entries := make([]common.DatabaseConfig, len(names))
	for i, n := range names {
		entries[i] = common.DatabaseConfig{Name: n, Engine: db.ImplMemory}
	}
	return entries
}

func TestNewKeepsConfigurationOrder(t *testing.T) {
	var opened []string
	r, err := NewWithOpener(memEntries("users", "cache", "db"), memoryOpener(&opened))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"users", "cache", "db"}, r.Names())
	assert.Equal(t, []string{"users", "cache", "db"}, opened)
	assert.Equal(t, 3, r.Len())

	dbs := r.Databases()
	require.Len(t, dbs, 3)
	assert.Equal(t, "cache", dbs[1].Name)
	assert.Equal(t, db.ImplMemory, dbs[1].Engine)
}

func TestLookup(t *testing.T) {
	var opened []string
	r, err := NewWithOpener(memEntries("a", "b"), memoryOpener(&opened))
	require.NoError(t, err)
	defer r.Close()

	a, ok := r.Lookup("a")
	require.True(t, ok)
	b, ok := r.Lookup("b")
	require.True(t, ok)

	_, _, err = a.Put("k", []byte("from-a"))
	require.NoError(t, err)

	// same key in another database is independent
	_, found, err := b.Get("k")
	require.NoError(t, err)
	assert.False(t, found)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
	_, ok = r.Lookup("")
	assert.False(t, ok)
}

func TestNewRejectsBadNames(t *testing.T) {
	tests := []struct {
		name    string
		entries []common.DatabaseConfig
		reason  string
	}{
		{"no entries", nil, "no databases configured"},
		{"empty name", memEntries("ok", ""), "must not be empty"},
		{"duplicate", memEntries("db", "other", "db"), "duplicate"},
		{"slash in name", memEntries("a/b"), "URI-safe"},
		{"space in name", memEntries("a b"), "URI-safe"},
		{"dot dot", memEntries(".."), "URI-safe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opened []string
			r, err := NewWithOpener(tt.entries, memoryOpener(&opened))
			require.Error(t, err)
			assert.Nil(t, r)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, cfgErr.Error(), tt.reason)
			assert.Empty(t, opened, "nothing may be opened when names are invalid")
		})
	}
}

type closeTracker struct {
	db.KVDB
	mu     *sync.Mutex
	closed *[]string
	name   string
}

func (c *closeTracker) Close() error {
	c.mu.Lock()
	*c.closed = append(*c.closed, c.name)
	c.mu.Unlock()
	return c.KVDB.Close()
}

func TestNewClosesOpenedHandlesOnFailure(t *testing.T) {
	var (
		mu     sync.Mutex
		closed []string
	)
	boom := errors.New("disk on fire")

	open := func(cfg common.DatabaseConfig) (*store.Handle, error) {
		if cfg.Name == "third" {
			return nil, boom
		}
		return store.New(cfg.Name, "", &closeTracker{KVDB: memory.NewMemoryDB(), mu: &mu, closed: &closed, name: cfg.Name}), nil
	}

	r, err := NewWithOpener(memEntries("first", "second", "third", "fourth"), open)
	require.Error(t, err)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, boom)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "third", cfgErr.Name)
	assert.Equal(t, 2, cfgErr.Index)

	assert.ElementsMatch(t, []string{"first", "second"}, closed)
}

func TestNewWithEngines(t *testing.T) {
	dir := t.TempDir()
	entries := []common.DatabaseConfig{
		{Name: "persistent", Path: filepath.Join(dir, "bolt"), Engine: db.ImplBolt},
		{Name: "scratch", Engine: db.ImplMemory},
	}

	r, err := New(entries)
	require.NoError(t, err)

	h, ok := r.Lookup("persistent")
	require.True(t, ok)
	assert.Equal(t, db.ImplBolt, h.Kind())
	_, _, err = h.Put("age", []byte("25"))
	require.NoError(t, err)

	require.NoError(t, r.Close())

	// reopening sees the data written before Close
	r, err = New(entries)
	require.NoError(t, err)
	defer r.Close()

	h, _ = r.Lookup("persistent")
	v, found, err := h.Get("age")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("25"), v)
}

func TestCloseIsIdempotent(t *testing.T) {
	var opened []string
	r, err := NewWithOpener(memEntries("db"), memoryOpener(&opened))
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	h, _ := r.Lookup("db")
	_, _, err = h.Get("k")
	assert.True(t, store.IsCode(err, store.RetCClosed))
}

func TestConcurrentLookups(t *testing.T) {
	var opened []string
	r, err := NewWithOpener(memEntries("a", "b", "c"), memoryOpener(&opened))
	require.NoError(t, err)
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range []string{"a", "b", "c", "x"} {
				_, ok := r.Lookup(name)
				assert.Equal(t, name != "x", ok)
			}
		}()
	}
	wg.Wait()
}
