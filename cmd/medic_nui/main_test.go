package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/journal/memory"
	sqlitejournal "github.com/qc-advancedmedic/nui/internal/journal/sqlite"
)

func TestNewJournalBackend(t *testing.T) {
	b, err := newJournalBackend(config.StorageConfig{Type: "memory"}, "qc-advancedmedic", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = newJournalBackend(config.StorageConfig{}, "qc-advancedmedic", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = newJournalBackend(config.StorageConfig{Type: "sqlite"}, "qc-advancedmedic", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &sqlitejournal.Backend{}, b)

	_, err = newJournalBackend(config.StorageConfig{Type: "mongo"}, "qc-advancedmedic", zerolog.Nop())
	assert.ErrorContains(t, err, "unknown storage type")
}

func TestParseExportArgs(t *testing.T) {
	opts, err := parseExportArgs([]string{"out.json.gz", "--kind", "outcome", "--limit", "5", "--since", "2026-10-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "out.json.gz", opts.file)
	assert.Equal(t, journal.KindOutcome, opts.filter.Kind)
	assert.Equal(t, 5, opts.filter.Limit)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), opts.filter.Since)

	tests := [][]string{
		{"--kind", "vitals"},
		{"--limit", "-2"},
		{"--since", "yesterday"},
		{"--limit"},
		{"--verbose", "1"},
		{"a.json", "b.json"},
	}
	for _, args := range tests {
		_, err := parseExportArgs(args)
		assert.Error(t, err, args)
	}
}

func writeExport(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	b := memory.New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.Init())

	ctx := context.Background()
	require.NoError(t, b.Record(ctx, journal.NewEntry(journal.KindPush, "show-inspection-panel")))
	require.NoError(t, b.Record(ctx, journal.NewEntry(journal.KindAction, "inspection/apply-bandage")))
	outcome := journal.NewEntry(journal.KindOutcome, "apply-bandage")
	outcome.Success = true
	require.NoError(t, b.Record(ctx, outcome))
	require.NoError(t, b.Close())
	return dir
}

func TestExportJournal_File(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := writeExport(t)
	path, err := memory.Latest(dir)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runCLI(context.Background(), []string{"journal", "export", path, "--kind", "outcome"}, &out))

	var export memory.Export
	require.NoError(t, json.Unmarshal(out.Bytes(), &export))
	require.Equal(t, 1, export.Count)
	assert.Equal(t, "apply-bandage", export.Entries[0].Type)
	assert.True(t, export.Entries[0].Success)
}

func TestExportJournal_LatestFromConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := writeExport(t)
	viper.Set("storage.type", "memory")
	viper.Set("storage.memory.outputDir", dir)

	var out bytes.Buffer
	require.NoError(t, runCLI(context.Background(), []string{"journal", "export"}, &out))

	var export memory.Export
	require.NoError(t, json.Unmarshal(out.Bytes(), &export))
	assert.Equal(t, 3, export.Count)
}

func TestExportJournal_NoExports(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("storage.memory.outputDir", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, runCLI(context.Background(), []string{"journal", "export"}, &bytes.Buffer{}))
}

func TestRunCLI_Usage(t *testing.T) {
	t.Cleanup(viper.Reset)
	for _, args := range [][]string{{"journal"}, {"journal", "rewind"}, {"frobnicate"}} {
		assert.ErrorIs(t, runCLI(context.Background(), args, &bytes.Buffer{}), errUsage)
	}

	viper.Set("storage.type", "memory")
	assert.ErrorContains(t, runCLI(context.Background(), []string{"journal", "tail"}, &bytes.Buffer{}), "needs storage.type redis")
}
