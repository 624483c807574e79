package badger

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/kvapp/lib/db"
	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/lni/dragonboat/v4/logger"
	"sync/atomic"
)

// maxConflictRetries bounds how often a read-modify-write transaction is
// replayed after badger reports a conflicting concurrent commit.
const maxConflictRetries = 64

var Logger = logger.GetLogger("engine")

// badgerImpl implements db.KVDB on top of a badger LSM directory
type badgerImpl struct {
	db     *badgerdb.DB
	path   string
	closed atomic.Bool
}

// DBOptions configures the badger engine during initialization
type DBOptions struct {
	SyncWrites bool // fsync every write (slower, survives power loss)
	ReadOnly   bool
}

// DefaultOptions returns the default badger engine options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		SyncWrites: false,
	}
}

// NewBadgerDB opens (or creates) the badger database in dir.
//
// Thread-safety: the returned engine is safe for concurrent use.
func NewBadgerDB(dir string, opts *DBOptions) (db.KVDB, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	bOpts := badgerdb.DefaultOptions(dir).
		WithLogger(Logger).
		WithSyncWrites(opts.SyncWrites).
		WithReadOnly(opts.ReadOnly)

	bdb, err := badgerdb.Open(bOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", dir, err)
	}

	return &badgerImpl{db: bdb, path: dir}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/db.go)
// --------------------------------------------------------------------------

func (b *badgerImpl) Get(key string) ([]byte, bool, error) {
	if b.closed.Load() {
		return nil, false, db.ErrClosed
	}

	var (
		value  []byte
		loaded bool
	)
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		loaded = err == nil
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("badger get: %w", err)
	}
	return value, loaded, nil
}

func (b *badgerImpl) Put(key string, value []byte) ([]byte, bool, error) {
	if b.closed.Load() {
		return nil, false, db.ErrClosed
	}

	var (
		previous []byte
		replaced bool
	)
	err := b.update(func(txn *badgerdb.Txn) error {
		previous, replaced = nil, false

		item, err := txn.Get([]byte(key))
		switch {
		case errors.Is(err, badgerdb.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if previous, err = item.ValueCopy(nil); err != nil {
				return err
			}
			replaced = true
		}

		// badger keeps a reference to the slice until commit
		valueCopy := make([]byte, len(value))
		copy(valueCopy, value)
		return txn.Set([]byte(key), valueCopy)
	})
	if err != nil {
		return nil, false, fmt.Errorf("badger put: %w", err)
	}
	return previous, replaced, nil
}

func (b *badgerImpl) Delete(key string) (bool, error) {
	if b.closed.Load() {
		return false, db.ErrClosed
	}

	var removed bool
	err := b.update(func(txn *badgerdb.Txn) error {
		removed = false

		_, err := txn.Get([]byte(key))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		removed = true
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return false, fmt.Errorf("badger delete: %w", err)
	}
	return removed, nil
}

func (b *badgerImpl) Flush() error {
	if b.closed.Load() {
		return db.ErrClosed
	}
	return b.db.Sync()
}

func (b *badgerImpl) GetInfo() db.DatabaseInfo {
	lsm, vlog := b.db.Size()
	return db.DatabaseInfo{
		DbType: db.ImplBadger,
		Path:   b.path,
		Metadata: map[string]int64{
			"lsm_size_bytes":  lsm,
			"vlog_size_bytes": vlog,
		},
	}
}

func (b *badgerImpl) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return db.ErrClosed
	}
	return b.db.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// update runs fn in a read-write transaction and replays it when badger
// detects a conflicting commit on the keys fn read.
func (b *badgerImpl) update(fn func(txn *badgerdb.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = b.db.Update(fn)
		if !errors.Is(err, badgerdb.ErrConflict) {
			return err
		}
		Logger.Debugf("transaction conflict on %s, retrying (%d)", b.path, i+1)
	}
	return err
}
