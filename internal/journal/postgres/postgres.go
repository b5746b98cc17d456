// Package postgres implements the journal.Backend interface using GORM with
// an internal queue and a background writer goroutine.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/qc-advancedmedic/nui/internal/database"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/model"
	"github.com/qc-advancedmedic/nui/internal/queue"
)

const (
	defaultFlushInterval = time.Second
	defaultQueueLimit    = 10000
)

// Dependencies holds all dependencies for the GORM journal backend.
type Dependencies struct {
	DB       *gorm.DB
	Log      zerolog.Logger
	Resource string
	Version  string

	FlushInterval time.Duration
	QueueLimit    int
}

// Backend implements journal.Backend with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	pending  *queue.Queue[model.JournalEntry]
	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a new GORM journal backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	if deps.QueueLimit <= 0 {
		deps.QueueLimit = defaultQueueLimit
	}
	return &Backend{
		deps:    deps,
		pending: queue.NewBounded[model.JournalEntry](deps.QueueLimit),
	}
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("no database connection")
	}
	if err := database.Setup(b.deps.DB, b.deps.Resource, b.deps.Version, b.deps.Log); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writeLoop()
	return nil
}

// Close stops the writer after a final flush.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	b.stopOnce.Do(func() {
		close(b.stopChan)
		<-b.done
	})
	return nil
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Record queues an entry for the next write.
func (b *Backend) Record(_ context.Context, e journal.Entry) error {
	if dropped := b.pending.Push(toModel(e)); dropped > 0 {
		b.deps.Log.Warn().Int("dropped", dropped).Msg("Journal queue full, dropped oldest entries")
	}
	return nil
}

// Entries flushes pending writes and reads the matching entries.
func (b *Backend) Entries(ctx context.Context, f journal.Filter) ([]journal.Entry, error) {
	if b.deps.DB == nil {
		return nil, errors.New("no database connection")
	}
	if err := b.flush(); err != nil {
		return nil, err
	}

	q := b.deps.DB.WithContext(ctx).Model(&model.JournalEntry{})
	if f.Kind != "" {
		q = q.Where("kind = ?", string(f.Kind))
	}
	if !f.Since.IsZero() {
		q = q.Where("recorded_at >= ?", f.Since)
	}
	q = q.Order("recorded_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []model.JournalEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	slices.Reverse(rows)

	out := make([]journal.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromModel(r))
	}
	return out, nil
}

// Pending returns the number of entries waiting to be written.
func (b *Backend) Pending() int {
	return b.pending.Len()
}

// flush writes all queued entries in one transaction. Failed batches go
// back to the front of the queue.
func (b *Backend) flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	if b.pending.Empty() {
		return nil
	}

	items := b.pending.GetAndEmpty()
	tx := b.deps.DB.Begin()
	if err := tx.Create(&items).Error; err != nil {
		tx.Rollback()
		b.pending.Requeue(items...)
		return fmt.Errorf("error creating journal entries: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		b.pending.Requeue(items...)
		return fmt.Errorf("error committing journal entries: %w", err)
	}
	return nil
}

// writeLoop periodically drains the queue into the DB.
func (b *Backend) writeLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			if err := b.flush(); err != nil {
				b.deps.Log.Error().Err(err).Msg("Final journal flush failed")
			}
			return
		case <-ticker.C:
			if err := b.flush(); err != nil {
				b.deps.Log.Error().Err(err).Msg("Journal flush failed")
			}
		}
	}
}
