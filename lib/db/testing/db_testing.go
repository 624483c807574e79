package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/kvapp/lib/db"
)

// DBFactory is a function that creates a new, empty instance of a KVDB implementation
type DBFactory func(t testing.TB) db.KVDB

// OpenFunc opens a persistent KVDB implementation at dir
type OpenFunc func(dir string) (db.KVDB, error)

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory(t))
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory(t))
		})

		t.Run("BinaryValues", func(t *testing.T) {
			testBinaryValues(t, factory(t))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory(t))
		})

		t.Run("Isolation", func(t *testing.T) {
			testIsolation(t, factory(t))
		})

		t.Run("ConcurrentDisjointPuts", func(t *testing.T) {
			testConcurrentDisjointPuts(t, factory(t))
		})

		t.Run("ConcurrentSameKey", func(t *testing.T) {
			testConcurrentSameKey(t, factory(t))
		})

		t.Run("Closed", func(t *testing.T) {
			testClosed(t, factory(t))
		})
	})
}

// RunPersistenceTests checks that data written before Close is visible after reopening the same directory.
func RunPersistenceTests(t *testing.T, name string, open OpenFunc) {
	t.Run(name, func(t *testing.T) {
		dir := t.TempDir()

		database, err := open(dir)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		for i := 0; i < 100; i++ {
			if _, _, err := database.Put(fmt.Sprintf("key-%d", i), []byte(fmt.Sprintf("value-%d", i))); err != nil {
				t.Fatalf("put failed: %v", err)
			}
		}
		if _, err := database.Delete("key-0"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := database.Flush(); err != nil {
			t.Fatalf("flush failed: %v", err)
		}
		if err := database.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		database, err = open(dir)
		if err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
		defer database.Close()

		if _, ok, _ := database.Get("key-0"); ok {
			t.Errorf("Expected deleted key to stay deleted after reopen")
		}
		for i := 1; i < 100; i++ {
			val, ok, err := database.Get(fmt.Sprintf("key-%d", i))
			if err != nil || !ok {
				t.Fatalf("Expected key-%d after reopen (ok=%v, err=%v)", i, ok, err)
			}
			if string(val) != fmt.Sprintf("value-%d", i) {
				t.Errorf("Expected value-%d, got %s", i, val)
			}
		}
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	testKey := "test-key"
	testValue := []byte("test-value")

	previous, replaced, err := database.Put(testKey, testValue)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if replaced || previous != nil {
		t.Errorf("Expected no previous value on first Put, got %q (replaced=%v)", previous, replaced)
	}

	result, exists, err := database.Get(testKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}
	if !bytes.Equal(result, testValue) {
		t.Errorf("Expected value %s, got %s", testValue, result)
	}

	_, exists, err = database.Get("nonexistent-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// the returned slice must be a copy
	result[0] = 'X'
	again, _, _ := database.Get(testKey)
	if !bytes.Equal(again, testValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testOverwrite(t *testing.T, database db.KVDB) {
	defer database.Close()

	v1 := []byte("value-1")
	v2 := []byte("value-2")

	if _, _, err := database.Put("k", v1); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	previous, replaced, err := database.Put("k", v2)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !replaced {
		t.Errorf("Expected second Put to report replaced=true")
	}
	if !bytes.Equal(previous, v1) {
		t.Errorf("Expected previous value %s, got %s", v1, previous)
	}

	result, _, _ := database.Get("k")
	if !bytes.Equal(result, v2) {
		t.Errorf("Expected value %s after overwrite, got %s", v2, result)
	}
}

func testBinaryValues(t *testing.T, database db.KVDB) {
	defer database.Close()

	cases := map[string][]byte{
		"empty":     {},
		"nul-bytes": {0x00, 0x01, 0x00, 0xff, 0x00},
		"large":     bytes.Repeat([]byte{0xab, 0x00}, 512*1024),
		"utf8-ключ": []byte("значение"),
	}

	for key, value := range cases {
		if _, _, err := database.Put(key, value); err != nil {
			t.Fatalf("Put(%s) failed: %v", key, err)
		}
	}

	for key, value := range cases {
		result, exists, err := database.Get(key)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", key, err)
		}
		if !exists {
			t.Errorf("Expected key %s to exist", key)
			continue
		}
		if len(result) != len(value) || !bytes.Equal(result, value) {
			t.Errorf("Value for %s not byte-exact (got %d bytes, want %d)", key, len(result), len(value))
		}
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	if _, _, err := database.Put("delete-key", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	removed, err := database.Delete("delete-key")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !removed {
		t.Errorf("Expected Delete of existing key to report removed=true")
	}

	if _, exists, _ := database.Get("delete-key"); exists {
		t.Errorf("Expected key to be absent after Delete")
	}

	removed, err = database.Delete("delete-key")
	if err != nil {
		t.Fatalf("Delete of missing key should not fail: %v", err)
	}
	if removed {
		t.Errorf("Expected Delete of missing key to report removed=false")
	}

	// the key can be written again
	if _, replaced, _ := database.Put("delete-key", []byte("again")); replaced {
		t.Errorf("Expected Put after Delete to report replaced=false")
	}
}

func testIsolation(t *testing.T, database db.KVDB) {
	defer database.Close()

	// keys that share prefixes must not collide
	keys := []string{"a", "ab", "abc", "a/b", "A", " a"}
	for i, k := range keys {
		if _, _, err := database.Put(k, []byte{byte(i)}); err != nil {
			t.Fatalf("Put(%q) failed: %v", k, err)
		}
	}
	for i, k := range keys {
		v, ok, err := database.Get(k)
		if err != nil || !ok {
			t.Fatalf("Get(%q) failed (ok=%v, err=%v)", k, ok, err)
		}
		if !bytes.Equal(v, []byte{byte(i)}) {
			t.Errorf("Key %q returned value of another key: %v", k, v)
		}
	}
}

func testConcurrentDisjointPuts(t *testing.T, database db.KVDB) {
	defer database.Close()

	const (
		workers = 16
		perWork = 100
	)

	var (
		wg       sync.WaitGroup
		failures atomic.Int64
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWork; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				if _, _, err := database.Put(key, []byte(key)); err != nil {
					failures.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	if n := failures.Load(); n != 0 {
		t.Fatalf("%d concurrent puts failed", n)
	}

	for w := 0; w < workers; w++ {
		for i := 0; i < perWork; i++ {
			key := fmt.Sprintf("w%d-k%d", w, i)
			v, ok, err := database.Get(key)
			if err != nil || !ok || string(v) != key {
				t.Errorf("Key %s not retrievable after concurrent puts (ok=%v, err=%v, v=%s)", key, ok, err, v)
			}
		}
	}
}

func testConcurrentSameKey(t *testing.T, database db.KVDB) {
	defer database.Close()

	const writers = 4

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 30; i++ {
				if _, _, err := database.Put("hot", []byte(fmt.Sprintf("writer-%d", w))); err != nil {
					t.Errorf("Put failed: %v", err)
					return
				}
				if i%10 == 0 {
					if _, err := database.Delete("hot"); err != nil {
						t.Errorf("Delete failed: %v", err)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()

	// every writer ends with a Put, so some writer's value must have won
	v, ok, err := database.Get("hot")
	if err != nil || !ok {
		t.Fatalf("Expected hot key to exist (ok=%v, err=%v)", ok, err)
	}
	if !bytes.HasPrefix(v, []byte("writer-")) {
		t.Errorf("Unexpected value for hot key: %s", v)
	}
}

func testClosed(t *testing.T, database db.KVDB) {
	if _, _, err := database.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := database.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := database.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, _, err := database.Get("k"); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed from Get after Close, got %v", err)
	}
	if _, _, err := database.Put("k", []byte("v")); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed from Put after Close, got %v", err)
	}
	if _, err := database.Delete("k"); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed from Delete after Close, got %v", err)
	}
	if err := database.Flush(); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed from Flush after Close, got %v", err)
	}
	if err := database.Close(); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed from second Close, got %v", err)
	}
}
