package testing

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementation
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Put", func(b *testing.B) {
			benchmarkPut(b, factory)
		})

		b.Run("PutExisting", func(b *testing.B) {
			benchmarkPutExisting(b, factory)
		})

		b.Run("PutLargeValue", func(b *testing.B) {
			benchmarkPutLargeValue(b, factory)
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory)
		})

		b.Run("Delete", func(b *testing.B) {
			benchmarkDelete(b, factory)
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkPut(b *testing.B, factory DBFactory) {
	database := factory(b)
	defer database.Close()

	value := []byte("benchmark-value")
	var counter atomic.Uint64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := fmt.Sprintf("key-%d", counter.Add(1))
			_, _, _ = database.Put(key, value)
		}
	})
}

func benchmarkPutExisting(b *testing.B, factory DBFactory) {
	database := factory(b)
	defer database.Close()

	const numKeys = 1000
	value := []byte("benchmark-value")
	for i := 0; i < numKeys; i++ {
		_, _, _ = database.Put(fmt.Sprintf("key-%d", i), value)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			_, _, _ = database.Put(fmt.Sprintf("key-%d", r.Intn(numKeys)), value)
		}
	})
}

func benchmarkPutLargeValue(b *testing.B, factory DBFactory) {
	database := factory(b)
	defer database.Close()

	value := bytes.Repeat([]byte("x"), 64*1024)
	var counter atomic.Uint64

	b.SetBytes(int64(len(value)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = database.Put(fmt.Sprintf("key-%d", counter.Add(1)), value)
	}
}

func benchmarkGet(b *testing.B, factory DBFactory) {
	database := factory(b)
	defer database.Close()

	const numKeys = 1000
	for i := 0; i < numKeys; i++ {
		_, _, _ = database.Put(fmt.Sprintf("key-%d", i), []byte(fmt.Sprintf("value-%d", i)))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			_, _, _ = database.Get(fmt.Sprintf("key-%d", r.Intn(numKeys)))
		}
	})
}

func benchmarkDelete(b *testing.B, factory DBFactory) {
	database := factory(b)
	defer database.Close()

	for i := 0; i < b.N; i++ {
		_, _, _ = database.Put(fmt.Sprintf("key-%d", i), []byte("v"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = database.Delete(fmt.Sprintf("key-%d", i))
	}
}

// benchmarkMixedUsage issues 80% reads, 15% writes and 5% deletes
func benchmarkMixedUsage(b *testing.B, factory DBFactory) {
	database := factory(b)
	defer database.Close()

	const numKeys = 10000
	for i := 0; i < numKeys; i++ {
		_, _, _ = database.Put(fmt.Sprintf("key-%d", i), []byte("v"))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			key := fmt.Sprintf("key-%d", r.Intn(numKeys))
			switch op := r.Intn(100); {
			case op < 80:
				_, _, _ = database.Get(key)
			case op < 95:
				_, _, _ = database.Put(key, []byte("updated"))
			default:
				_, _ = database.Delete(key)
			}
		}
	})
}
