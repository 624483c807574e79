// Package engines selects and opens a db.KVDB implementation by name.
package engines

import (
	"fmt"
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/ValentinKolb/kvapp/lib/db/engines/badger"
	"github.com/ValentinKolb/kvapp/lib/db/engines/bolt"
	"github.com/ValentinKolb/kvapp/lib/db/engines/memory"
)

// Open opens the engine of the given kind at path.
// The memory engine ignores path.
func Open(kind db.Implementation, path string) (db.KVDB, error) {
	switch kind {
	case db.ImplBadger:
		return badger.NewBadgerDB(path, nil)
	case db.ImplBolt:
		return bolt.NewBoltDB(path, nil)
	case db.ImplMemory:
		return memory.NewMemoryDB(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", kind)
	}
}
