// internal/journal/memory/memory.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/journal"
)

// Backend keeps the journal in memory and exports it to JSON on Close.
type Backend struct {
	cfg     config.MemoryConfig
	started time.Time

	entries        []journal.Entry
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		started: time.Now().UTC(),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports the journal when an output directory is configured and
// anything was recorded.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.OutputDir == "" || len(b.entries) == 0 {
		return nil
	}
	return b.exportJSON()
}

// Record appends an entry.
func (b *Backend) Record(_ context.Context, e journal.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	return nil
}

// Entries returns the entries matching f.
func (b *Backend) Entries(_ context.Context, f journal.Filter) ([]journal.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return f.Apply(b.entries), nil
}

// Pending returns the number of entries held.
func (b *Backend) Pending() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// GetExportedFilePath returns the path written by the last export.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
