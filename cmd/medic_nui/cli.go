package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/database"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/journal/memory"
	redisjournal "github.com/qc-advancedmedic/nui/internal/journal/redis"
)

const usage = `usage:
  medic_nui [serve]
  medic_nui journal export [file] [--kind action|push|outcome] [--since RFC3339] [--limit N]
  medic_nui journal tail
  medic_nui setupdb`

var errUsage = errors.New(usage)

func runCLI(ctx context.Context, args []string, out io.Writer) error {
	switch strings.ToLower(args[0]) {
	case "journal":
		if len(args) < 2 {
			return errUsage
		}
		switch strings.ToLower(args[1]) {
		case "export":
			return exportJournal(ctx, args[2:], out)
		case "tail":
			return tailJournal(ctx, out)
		}
		return errUsage

	case "setupdb":
		db, err := database.GetPostgresDB(database.GetPostgresConfig(), ZLog)
		if err != nil {
			return err
		}
		if err := database.Setup(db, config.GetGatewayConfig().Resource, CurrentVersion, ZLog); err != nil {
			return err
		}
		Logger.Info("DB setup complete.")
		return nil
	}
	return errUsage
}

type exportOptions struct {
	file   string
	filter journal.Filter
}

func parseExportArgs(args []string) (exportOptions, error) {
	var (
		opts  exportOptions
		kind  string
		since string
	)
	fs := pflag.NewFlagSet("journal export", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&kind, "kind", "", "only entries of this kind (action, push, outcome)")
	fs.StringVar(&since, "since", "", "only entries at or after this RFC3339 time")
	fs.IntVar(&opts.filter.Limit, "limit", 0, "keep only the newest N entries")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		opts.file = rest[0]
	default:
		return opts, fmt.Errorf("unexpected arguments %v", rest[1:])
	}

	switch k := journal.Kind(kind); k {
	case "", journal.KindAction, journal.KindPush, journal.KindOutcome:
		opts.filter.Kind = k
	default:
		return opts, fmt.Errorf("unknown kind %q", kind)
	}
	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return opts, fmt.Errorf("invalid --since: %w", err)
		}
		opts.filter.Since = t
	}
	if opts.filter.Limit < 0 {
		return opts, fmt.Errorf("invalid --limit %d", opts.filter.Limit)
	}
	return opts, nil
}

// exportJournal writes journal entries as JSON. A file argument reads a
// memory export; otherwise the configured backend is queried, and for the
// memory backend the newest export in its output dir is used.
func exportJournal(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseExportArgs(args)
	if err != nil {
		return err
	}

	storageCfg := config.GetStorageConfig()
	var entries []journal.Entry

	switch {
	case opts.file != "" || storageCfg.Type == "memory" || storageCfg.Type == "":
		path := opts.file
		if path == "" {
			if path, err = memory.Latest(storageCfg.Memory.OutputDir); err != nil {
				return err
			}
		}
		export, err := memory.Load(path)
		if err != nil {
			return err
		}
		entries = opts.filter.Apply(export.Entries)

	default:
		backend, err := createJournalBackend(storageCfg, config.GetGatewayConfig().Resource)
		if err != nil {
			return err
		}
		if err := backend.Init(); err != nil {
			return err
		}
		defer backend.Close()
		if entries, err = backend.Entries(ctx, opts.filter); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(memory.Export{
		Started: time.Now().UTC().Format(time.RFC3339),
		Count:   len(entries),
		Entries: entries,
	})
}

// tailJournal prints entries published by a running bridge with the redis
// journal, one JSON line each, until interrupted.
func tailJournal(ctx context.Context, out io.Writer) error {
	storageCfg := config.GetStorageConfig()
	if storageCfg.Type != "redis" {
		return fmt.Errorf("journal tail needs storage.type redis, got %q", storageCfg.Type)
	}
	backend := redisjournal.New(storageCfg.Redis, ZLog)
	if err := backend.Init(); err != nil {
		return err
	}
	defer backend.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	enc := json.NewEncoder(out)
	return backend.Follow(ctx, func(e journal.Entry) {
		_ = enc.Encode(e)
	})
}
