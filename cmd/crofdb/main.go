package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/crofdb-go/internal/config"
	"github.com/samvad-hq/crofdb-go/internal/logger"
	"github.com/spf13/pflag"
)

const usage = `usage: crofdb [flags] <command> [args]

commands:
  get KEY            print the value of KEY
  keys KEY...        print the listed keys
  all                print every key
  set KEY VALUE      create or overwrite KEY
  del KEY            delete KEY
  reset              delete every key in the location
  backup             save all keys to the local snapshot store
  restore            write the local snapshot back
  import FILE        write entries from a YAML/JSON file
  export FILE        save all keys to a YAML/JSON file
  snapshots          list local snapshots

flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "crofdb: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := config.Flags("crofdb")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(cfg.LogLevel)
	defer logger.Close()

	logger.InfoObj("crofdb starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &command{cfg: cfg, log: log, out: json.NewEncoder(stdout)}
	cmd.out.SetIndent("", "  ")

	if err := cmd.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		logger.ErrorObj("command failed", "error", map[string]any{
			"command": fs.Arg(0),
			"error":   err.Error(),
		})
		return err
	}
	return nil
}
