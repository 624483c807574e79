// Package testing provides standardised tests and benchmarks for
// engine implementations that satisfy the db.KVDB interface.
//
// The package contains:
//   - RunKVDBTests: A conformance suite covering round-trips, overwrite and
//     delete semantics, byte-exact binary values, concurrent writers and
//     behaviour after Close
//   - RunPersistenceTests: Checks that an on-disk engine survives a reopen
//   - RunKVDBBenchmarks: Throughput of common operations
//
// Example usage:
//
//	factory := func(t testing.TB) db.KVDB {
//		d, err := NewMyDatabase(t.TempDir())
//		if err != nil {
//			t.Fatal(err)
//		}
//		return d
//	}
//
//	dbtesting.RunKVDBTests(t, "MyDatabase", factory)
//	dbtesting.RunKVDBBenchmarks(b, "MyDatabase", factory)
package testing
