package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samvad-hq/crofdb-go/internal/logger"
	"github.com/samvad-hq/crofdb-go/internal/seed"
	"github.com/samvad-hq/crofdb-go/internal/storage"
	"github.com/samvad-hq/crofdb-go/pkg/crofdb"
	"golang.org/x/sync/errgroup"
)

// ErrRejected is returned when the server answered some writes with a
// non-"success" message.
var ErrRejected = errors.New("entries rejected by server")

// Database is the subset of *crofdb.Client used for bulk transfers.
type Database interface {
	Location() string
	GetAll(ctx context.Context) (crofdb.Entries, error)
	Create(ctx context.Context, key, value string) (crofdb.WriteResult, error)
}

// Transfer moves entries between a remote location and local snapshots or seed files.
type Transfer struct {
	db          Database
	store       storage.Store
	concurrency int
	log         logger.Logger
}

// BackupReport summarizes a snapshot taken from the remote location.
type BackupReport struct {
	Location string    `json:"location"`
	Count    int       `json:"count"`
	Skipped  []string  `json:"skipped,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// WriteReport summarizes a bulk write to the remote location.
type WriteReport struct {
	Location string            `json:"location"`
	Written  int               `json:"written"`
	Rejected map[string]string `json:"rejected,omitempty"`
}

// NewTransfer wires a transfer service. A nil store disables snapshots.
func NewTransfer(db Database, store storage.Store, concurrency int, log logger.Logger) (*Transfer, error) {
	if db == nil {
		return nil, fmt.Errorf("database client must not be nil")
	}
	if store == nil {
		var err error
		if store, err = storage.NewStore("none", "", storage.Options{}); err != nil {
			return nil, err
		}
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Transfer{db: db, store: store, concurrency: concurrency, log: log}, nil
}

// Backup saves the current contents of the location as a local snapshot.
// Entries whose value is not a string are skipped and reported.
func (t *Transfer) Backup(ctx context.Context) (BackupReport, error) {
	entries, skipped, err := t.fetchAll(ctx)
	if err != nil {
		return BackupReport{}, err
	}

	location := t.db.Location()
	if err := t.store.SaveSnapshot(location, entries); err != nil {
		return BackupReport{}, fmt.Errorf("save snapshot: %w", err)
	}

	report := BackupReport{
		Location: location,
		Count:    len(entries),
		Skipped:  skipped,
		SavedAt:  time.Now().UTC(),
	}
	t.log.InfoObj("backup completed", "backup", report)
	return report, nil
}

// Restore writes the stored snapshot back to the location. It merges: entries
// created after the snapshot was taken are left in place. Call Reset on the
// client first for an exact rollback.
func (t *Transfer) Restore(ctx context.Context) (WriteReport, error) {
	snap, err := t.store.LoadSnapshot(t.db.Location())
	if err != nil {
		return WriteReport{}, fmt.Errorf("load snapshot: %w", err)
	}
	return t.writeAll(ctx, "restore", snap.Entries)
}

// Import writes the entries of a YAML or JSON seed file to the location.
func (t *Transfer) Import(ctx context.Context, path string) (WriteReport, error) {
	entries, err := seed.LoadFile(path)
	if err != nil {
		return WriteReport{}, fmt.Errorf("load seed file: %w", err)
	}
	return t.writeAll(ctx, "import", entries)
}

// Export writes the current contents of the location to a seed file.
func (t *Transfer) Export(ctx context.Context, path string) (int, error) {
	entries, skipped, err := t.fetchAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := seed.WriteFile(path, entries); err != nil {
		return 0, err
	}
	t.log.InfoObj("export completed", "export", map[string]any{
		"location": t.db.Location(),
		"path":     path,
		"count":    len(entries),
		"skipped":  skipped,
	})
	return len(entries), nil
}

func (t *Transfer) fetchAll(ctx context.Context) (map[string]string, []string, error) {
	all, err := t.db.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch entries: %w", err)
	}
	entries := all.Strings()
	var skipped []string
	for _, k := range all.Keys() {
		if _, ok := entries[k]; !ok {
			skipped = append(skipped, k)
		}
	}
	return entries, skipped, nil
}

// writeAll creates every entry with bounded concurrency. The first transport or
// server error cancels the remaining writes; non-"success" answers are collected
// as rejections.
func (t *Transfer) writeAll(ctx context.Context, op string, entries map[string]string) (WriteReport, error) {
	report := WriteReport{Location: t.db.Location()}
	if len(entries) == 0 {
		return report, nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)

	for _, key := range keys {
		key := key
		g.Go(func() error {
			res, err := t.db.Create(gctx, key, entries[key])
			if err != nil {
				return fmt.Errorf("create %q: %w", key, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if res.OK {
				report.Written++
				return nil
			}
			if report.Rejected == nil {
				report.Rejected = make(map[string]string)
			}
			report.Rejected[key] = res.Message
			return nil
		})
	}

	err := g.Wait()
	meta := map[string]any{
		"location": report.Location,
		"written":  report.Written,
		"rejected": len(report.Rejected),
		"total":    len(keys),
	}
	if err != nil {
		meta["error"] = err.Error()
		t.log.ErrorObj(op+" aborted", op, meta)
		return report, err
	}
	if len(report.Rejected) > 0 {
		t.log.WarnObj(op+" completed with rejections", op, meta)
		return report, fmt.Errorf("%s: %d of %d: %w", op, len(report.Rejected), len(keys), ErrRejected)
	}
	t.log.InfoObj(op+" completed", op, meta)
	return report, nil
}
