package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/journal"
)

// Compile-time interface check
var _ journal.Backend = (*Backend)(nil)

func entryAt(kind journal.Kind, typ string, at time.Time) journal.Entry {
	e := journal.NewEntry(kind, typ)
	e.Time = at
	return e
}

func TestRecordAndEntries(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.Init())
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, b.Record(ctx, entryAt(journal.KindOutcome, "apply-bandage", base.Add(2*time.Second))))
	require.NoError(t, b.Record(ctx, entryAt(journal.KindAction, "inspect", base)))
	require.NoError(t, b.Record(ctx, entryAt(journal.KindAction, "select-item", base.Add(time.Second))))

	all, err := b.Entries(ctx, journal.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "inspect", all[0].Type, "oldest first")
	assert.Equal(t, 3, b.Pending())

	actions, err := b.Entries(ctx, journal.Filter{Kind: journal.KindAction})
	require.NoError(t, err)
	assert.Len(t, actions, 2)

	recent, err := b.Entries(ctx, journal.Filter{Since: base.Add(time.Second)})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	last, err := b.Entries(ctx, journal.Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "apply-bandage", last[0].Type)

	require.NoError(t, b.Close())
	assert.Empty(t, b.GetExportedFilePath(), "no output dir, no export")
}

func TestClose_ExportsRoundTrip(t *testing.T) {
	for _, compress := range []bool{true, false} {
		dir := t.TempDir()
		b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: compress})

		e := journal.NewEntry(journal.KindOutcome, "medical-treatment").WithPayload(map[string]string{"bodyPart": "HEAD"})
		e.Success = true
		require.NoError(t, b.Record(context.Background(), e))
		require.NoError(t, b.Close())

		path := b.GetExportedFilePath()
		require.NotEmpty(t, path)
		if compress {
			assert.Contains(t, path, ".json.gz")
		}

		latest, err := Latest(dir)
		require.NoError(t, err)
		assert.Equal(t, path, latest)

		export, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 1, export.Count)
		require.Len(t, export.Entries, 1)
		assert.Equal(t, e.ID, export.Entries[0].ID)
		assert.True(t, export.Entries[0].Success)
		assert.JSONEq(t, `{"bodyPart":"HEAD"}`, string(export.Entries[0].Payload))
	}
}

func TestClose_EmptyJournalWritesNothing(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.Close())

	_, err := Latest(dir)
	assert.Error(t, err)
}
