// Package sqlitejournal keeps the journal in an in-memory SQLite database
// with periodic disk dumps via VACUUM INTO. It wraps the GORM backend; the
// only SQLite-specific concerns are creating the database and the dump loop.
package sqlitejournal

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/database"
	"github.com/qc-advancedmedic/nui/internal/journal/postgres"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*postgres.Backend
	db       *gorm.DB
	cfg      config.SQLiteConfig
	log      zerolog.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a new SQLite journal backend.
func New(cfg config.SQLiteConfig, resource, version string, log zerolog.Logger) (*Backend, error) {
	db, err := database.GetSqliteDB("", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &Backend{
		Backend: postgres.New(postgres.Dependencies{
			DB:       db,
			Log:      log,
			Resource: resource,
			Version:  version,
		}),
		db:       db,
		cfg:      cfg,
		log:      log,
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, closes the embedded backend and writes a
// final dump.
func (b *Backend) Close() error {
	var err error
	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.wg.Wait()
		if err = b.Backend.Close(); err != nil {
			return
		}
		if b.cfg.DumpPath != "" {
			err = b.Dump()
		}
	})
	return err
}

// Dump writes the database to the configured dump path.
func (b *Backend) Dump() error {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		return err
	}
	b.log.Debug().Dur("duration", time.Since(start)).Str("path", b.cfg.DumpPath).Msg("Dumped journal to disk")
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Dump(); err != nil {
				b.log.Error().Err(err).Msg("Error dumping journal to disk")
			}
		}
	}
}
