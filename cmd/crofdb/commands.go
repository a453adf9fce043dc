package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/crofdb-go/internal/app"
	"github.com/samvad-hq/crofdb-go/internal/config"
	"github.com/samvad-hq/crofdb-go/internal/logger"
	"github.com/samvad-hq/crofdb-go/internal/storage"
	"github.com/samvad-hq/crofdb-go/pkg/crofdb"
)

// command executes a single CLI invocation.
type command struct {
	cfg *config.Config
	log logger.Logger
	out *json.Encoder
}

func (c *command) dispatch(ctx context.Context, name string, args []string) error {
	if name == "snapshots" {
		return c.withStore(func(store storage.Store) error {
			infos, err := store.Snapshots()
			if err != nil {
				return err
			}
			return c.print(infos)
		})
	}

	if err := c.cfg.RequireCredentials(); err != nil {
		return err
	}
	db := crofdb.New(c.cfg.Username, c.cfg.APIKey,
		crofdb.WithBaseURL(c.cfg.BaseURL),
		crofdb.WithTimeout(c.cfg.Timeout),
		crofdb.WithRetries(c.cfg.RetryCount, c.cfg.RetryWait),
		crofdb.WithLogger(c.log),
	)

	switch name {
	case "get":
		if err := expectArgs(name, args, 1); err != nil {
			return err
		}
		v, err := db.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return c.print(map[string]string{args[0]: v})
	case "keys":
		if len(args) == 0 {
			return fmt.Errorf("keys: at least one key is required")
		}
		entries, err := db.GetKeys(ctx, args...)
		if err != nil {
			return err
		}
		return c.print(entries)
	case "all":
		if err := expectArgs(name, args, 0); err != nil {
			return err
		}
		entries, err := db.GetAll(ctx)
		if err != nil {
			return err
		}
		return c.print(entries)
	case "set":
		if err := expectArgs(name, args, 2); err != nil {
			return err
		}
		return c.printWrite(db.Create(ctx, args[0], args[1]))
	case "del":
		if err := expectArgs(name, args, 1); err != nil {
			return err
		}
		return c.printWrite(db.Delete(ctx, args[0]))
	case "reset":
		if err := expectArgs(name, args, 0); err != nil {
			return err
		}
		return c.printWrite(db.Reset(ctx))
	case "backup", "restore":
		if err := expectArgs(name, args, 0); err != nil {
			return err
		}
		return c.withStore(func(store storage.Store) error {
			tr, err := app.NewTransfer(db, store, c.cfg.RestoreConcurrency, c.log)
			if err != nil {
				return err
			}
			if name == "backup" {
				report, err := tr.Backup(ctx)
				if err != nil {
					return err
				}
				return c.print(report)
			}
			return c.printReport(tr.Restore(ctx))
		})
	case "import":
		if err := expectArgs(name, args, 1); err != nil {
			return err
		}
		tr, err := app.NewTransfer(db, nil, c.cfg.RestoreConcurrency, c.log)
		if err != nil {
			return err
		}
		return c.printReport(tr.Import(ctx, args[0]))
	case "export":
		if err := expectArgs(name, args, 1); err != nil {
			return err
		}
		tr, err := app.NewTransfer(db, nil, c.cfg.RestoreConcurrency, c.log)
		if err != nil {
			return err
		}
		n, err := tr.Export(ctx, args[0])
		if err != nil {
			return err
		}
		return c.print(map[string]any{"path": args[0], "count": n})
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

// withStore opens the configured snapshot store for the duration of fn.
func (c *command) withStore(fn func(storage.Store) error) error {
	store, err := storage.NewStore(c.cfg.StorageType, c.cfg.BBoltPath, storage.Options{
		SnapshotTTL:     c.cfg.SnapshotTTL,
		CleanupInterval: c.cfg.CleanupInterval,
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			c.log.ErrorObj("storage close failed", "error", err)
		}
	}()
	return fn(store)
}

func (c *command) print(v any) error {
	return c.out.Encode(v)
}

// printReport prints a bulk write report when the run completed, including runs
// where the server rejected some entries.
func (c *command) printReport(report app.WriteReport, err error) error {
	if err != nil && !errors.Is(err, app.ErrRejected) {
		return err
	}
	if printErr := c.print(report); printErr != nil {
		return printErr
	}
	return err
}

// printWrite prints a write result; a non-"success" answer becomes an error so
// the exit code reflects it.
func (c *command) printWrite(res crofdb.WriteResult, err error) error {
	if err != nil {
		return err
	}
	if err := c.print(res); err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("server did not acknowledge write: %s", res.Message)
	}
	return nil
}

func expectArgs(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, n, len(args))
	}
	return nil
}
