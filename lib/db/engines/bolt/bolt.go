package bolt

import (
	"bytes"
	"fmt"
	"github.com/ValentinKolb/kvapp/lib/db"
	"go.etcd.io/bbolt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

const (
	// dataFile is the bolt file created inside the configured directory
	dataFile = "data.bolt"
	// bucketName holds every record of the database
	bucketName = "kv"
)

type boltImpl struct {
	db     *bbolt.DB
	path   string
	closed atomic.Bool
}

// DBOptions configures the bolt engine during initialization
type DBOptions struct {
	OpenTimeout time.Duration // how long to wait for the file lock (0 = forever)
	NoSync      bool          // skip fsync on commit, Flush syncs explicitly
}

// DefaultOptions returns the default bolt engine options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		OpenTimeout: time.Second,
	}
}

// NewBoltDB opens (or creates) a bolt database file inside dir.
// The directory is created if it does not exist.
func NewBoltDB(dir string, opts *DBOptions) (db.KVDB, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory %s: %w", dir, err)
	}

	bdb, err := bbolt.Open(filepath.Join(dir, dataFile), 0o600, &bbolt.Options{Timeout: opts.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database at %s: %w", dir, err)
	}
	bdb.NoSync = opts.NoSync

	// Initialize the bucket
	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}

	return &boltImpl{db: bdb, path: dir}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/db.go)
// --------------------------------------------------------------------------

func (b *boltImpl) Get(key string) ([]byte, bool, error) {
	if b.closed.Load() {
		return nil, false, db.ErrClosed
	}

	var (
		value  []byte
		loaded bool
	)
	err := b.db.View(func(tx *bbolt.Tx) error {
		v, ok := lookup(tx.Bucket([]byte(bucketName)), key)
		if !ok {
			return nil
		}
		// bolt memory is only valid inside the transaction
		value = make([]byte, len(v))
		copy(value, v)
		loaded = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("bolt get: %w", err)
	}
	return value, loaded, nil
}

func (b *boltImpl) Put(key string, value []byte) ([]byte, bool, error) {
	if b.closed.Load() {
		return nil, false, db.ErrClosed
	}

	var (
		previous []byte
		replaced bool
	)
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if old, ok := lookup(bucket, key); ok {
			previous = make([]byte, len(old))
			copy(previous, old)
			replaced = true
		}
		// empty values are stored as a zero-length slice, never nil
		if value == nil {
			value = []byte{}
		}
		return bucket.Put([]byte(key), value)
	})
	if err != nil {
		return nil, false, fmt.Errorf("bolt put: %w", err)
	}
	return previous, replaced, nil
}

func (b *boltImpl) Delete(key string) (bool, error) {
	if b.closed.Load() {
		return false, db.ErrClosed
	}

	var removed bool
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if _, ok := lookup(bucket, key); !ok {
			return nil
		}
		removed = true
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return false, fmt.Errorf("bolt delete: %w", err)
	}
	return removed, nil
}

func (b *boltImpl) Flush() error {
	if b.closed.Load() {
		return db.ErrClosed
	}
	return b.db.Sync()
}

func (b *boltImpl) GetInfo() db.DatabaseInfo {
	info := db.DatabaseInfo{
		DbType: db.ImplBolt,
		Path:   b.path,
	}
	_ = b.db.View(func(tx *bbolt.Tx) error {
		info.Metadata = map[string]int64{
			"size_bytes": tx.Size(),
			"keys":       int64(tx.Bucket([]byte(bucketName)).Stats().KeyN),
		}
		return nil
	})
	return info
}

func (b *boltImpl) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return db.ErrClosed
	}
	return b.db.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// lookup finds key with a cursor so zero-length values are reported as present.
func lookup(bucket *bbolt.Bucket, key string) ([]byte, bool) {
	k, v := bucket.Cursor().Seek([]byte(key))
	if k == nil || !bytes.Equal(k, []byte(key)) {
		return nil, false
	}
	return v, true
}
