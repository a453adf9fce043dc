package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	metaBucket       = "snapshots"
	entriesBucket    = "entries"
	savedAtBytes     = 8
	snapshotMetaSize = savedAtBytes + 4
)

// boltStore implements a Store backed by BoltDB. Each location owns a nested
// bucket under entries; its saved-at time and entry count live in snapshots.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	snapshotTTL     time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(metaBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(entriesBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		snapshotTTL:     opts.SnapshotTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SaveSnapshot replaces the stored snapshot for location.
func (b *boltStore) SaveSnapshot(location string, entries map[string]string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		meta, parent, err := buckets(tx)
		if err != nil {
			return err
		}

		name := []byte(location)
		if parent.Bucket(name) != nil {
			if err := parent.DeleteBucket(name); err != nil {
				return fmt.Errorf("drop previous snapshot: %w", err)
			}
		}
		bucket, err := parent.CreateBucket(name)
		if err != nil {
			return fmt.Errorf("create snapshot bucket: %w", err)
		}
		for k, v := range entries {
			if err := bucket.Put([]byte(k), []byte(v)); err != nil {
				return fmt.Errorf("put %q: %w", k, err)
			}
		}
		return meta.Put(name, encodeMeta(now, len(entries)))
	})
}

// LoadSnapshot returns the live snapshot for location or ErrNoSnapshot.
func (b *boltStore) LoadSnapshot(location string) (Snapshot, error) {
	if b == nil || b.db == nil {
		return Snapshot{}, ErrNoSnapshot
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return Snapshot{}, err
	}

	var (
		snap  Snapshot
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		meta, parent, err := buckets(tx)
		if err != nil {
			return err
		}

		name := []byte(location)
		savedAt, _, ok := decodeMeta(meta.Get(name))
		bucket := parent.Bucket(name)
		if !ok || bucket == nil {
			return nil
		}
		if b.expired(savedAt, now) {
			return dropSnapshot(meta, parent, name)
		}

		entries := make(map[string]string)
		if err := bucket.ForEach(func(k, v []byte) error {
			entries[string(k)] = string(v)
			return nil
		}); err != nil {
			return err
		}
		snap = Snapshot{Location: location, SavedAt: savedAt, Entries: entries}
		found = true
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	if !found {
		return Snapshot{}, ErrNoSnapshot
	}
	return snap, nil
}

// Snapshots lists stored snapshots ordered by location.
func (b *boltStore) Snapshots() ([]SnapshotInfo, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	var out []SnapshotInfo
	err := b.db.View(func(tx *bolt.Tx) error {
		meta, _, err := buckets(tx)
		if err != nil {
			return err
		}
		return meta.ForEach(func(k, v []byte) error {
			savedAt, count, ok := decodeMeta(v)
			if !ok || b.expired(savedAt, now) {
				return nil
			}
			out = append(out, SnapshotInfo{Location: string(k), SavedAt: savedAt, Count: count})
			return nil
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out, err
}

func (b *boltStore) expired(savedAt, now time.Time) bool {
	return !savedAt.Add(b.snapshotTTL).After(now)
}

// maybeCleanupExpired removes expired snapshots on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		meta, parent, err := buckets(tx)
		if err != nil {
			return err
		}

		var stale [][]byte
		if err := meta.ForEach(func(k, v []byte) error {
			savedAt, _, ok := decodeMeta(v)
			if !ok || b.expired(savedAt, now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, name := range stale {
			if err := dropSnapshot(meta, parent, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func buckets(tx *bolt.Tx) (meta, entries *bolt.Bucket, err error) {
	meta = tx.Bucket([]byte(metaBucket))
	entries = tx.Bucket([]byte(entriesBucket))
	if meta == nil || entries == nil {
		return nil, nil, fmt.Errorf("snapshot buckets missing")
	}
	return meta, entries, nil
}

func dropSnapshot(meta, parent *bolt.Bucket, name []byte) error {
	if parent.Bucket(name) != nil {
		if err := parent.DeleteBucket(name); err != nil {
			return err
		}
	}
	return meta.Delete(name)
}

// encodeMeta packs the saved-at unix time and entry count.
func encodeMeta(savedAt time.Time, count int) []byte {
	buf := make([]byte, snapshotMetaSize)
	binary.BigEndian.PutUint64(buf[:savedAtBytes], uint64(savedAt.Unix()))
	binary.BigEndian.PutUint32(buf[savedAtBytes:], uint32(count))
	return buf
}

// decodeMeta decodes the saved-at time and count from the stored byte slice.
func decodeMeta(value []byte) (time.Time, int, bool) {
	if len(value) != snapshotMetaSize {
		return time.Time{}, 0, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:savedAtBytes]))
	if unix <= 0 {
		return time.Time{}, 0, false
	}
	count := int(binary.BigEndian.Uint32(value[savedAtBytes:]))
	return time.Unix(unix, 0), count, true
}
