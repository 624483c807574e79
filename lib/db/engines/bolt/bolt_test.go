package bolt

import (
	"github.com/ValentinKolb/kvapp/lib/db"
	dbtesting "github.com/ValentinKolb/kvapp/lib/db/testing"
	"os"
	"path/filepath"
	"testing"
)

func factory(t testing.TB) db.KVDB {
	d, err := NewBoltDB(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to open bolt: %v", err)
	}
	return d
}

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "BoltDB", factory)
}

func TestPersistence(t *testing.T) {
	dbtesting.RunPersistenceTests(t, "BoltDB", func(dir string) (db.KVDB, error) {
		return NewBoltDB(dir, nil)
	})
}

func TestCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	d, err := NewBoltDB(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	if _, err := os.Stat(filepath.Join(dir, dataFile)); err != nil {
		t.Errorf("expected data file to exist: %v", err)
	}
}

func TestOpenOnFileFails(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain-file")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewBoltDB(file, nil); err == nil {
		t.Errorf("expected opening a regular file as directory to fail")
	}
}

func Benchmark(b *testing.B) {
	dbtesting.RunKVDBBenchmarks(b, "BoltDB", factory)
}
