package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Package storage keeps local point-in-time copies of a location's entries.

var (
	// ErrNoSnapshot is returned when no live snapshot exists for a location.
	ErrNoSnapshot = errors.New("no snapshot for location")

	// ErrDisabled is returned by every snapshot operation when storage is turned off.
	ErrDisabled = errors.New("snapshot storage is disabled")
)

// Snapshot is a saved copy of a location's entries.
type Snapshot struct {
	Location string
	SavedAt  time.Time
	Entries  map[string]string
}

// SnapshotInfo describes a stored snapshot without its entries.
type SnapshotInfo struct {
	Location string    `json:"location"`
	SavedAt  time.Time `json:"saved_at"`
	Count    int       `json:"count"`
}

// Store persists snapshots.
type Store interface {
	Close() error
	SaveSnapshot(location string, entries map[string]string) error
	LoadSnapshot(location string) (Snapshot, error)
	Snapshots() ([]SnapshotInfo, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SnapshotTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSnapshotTTL     = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore backs storage_type=none and refuses every snapshot operation.
type noopStore struct{}

func (noopStore) Close() error                                 { return nil }
func (noopStore) SaveSnapshot(string, map[string]string) error { return ErrDisabled }
func (noopStore) LoadSnapshot(string) (Snapshot, error)        { return Snapshot{}, ErrDisabled }
func (noopStore) Snapshots() ([]SnapshotInfo, error)           { return nil, ErrDisabled }
