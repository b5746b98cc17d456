package monitor

import (
	"encoding/json"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/state"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger     *slog.Logger
	Store      *state.Store
	Journal    journal.Backend
	Clients    func() int
	StatusPath string
	Interval   time.Duration
}

// Status is a point-in-time report of the bridge.
type Status struct {
	Time           time.Time  `json:"time"`
	View           state.View `json:"view"`
	StateVersion   uint64     `json:"stateVersion"`
	Clients        int        `json:"clients"`
	JournalPending int        `json:"journalPending"`
	Goroutines     int        `json:"goroutines"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Second
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the current status
func (s *Service) GetStatus() Status {
	st := Status{
		Time:       time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
	}
	if s.deps.Store != nil {
		app, version := s.deps.Store.Get()
		st.View = app.View
		st.StateVersion = version
	}
	if s.deps.Clients != nil {
		st.Clients = s.deps.Clients()
	}
	if p, ok := s.deps.Journal.(journal.Pending); ok {
		st.JournalPending = p.Pending()
	}
	return st
}

// WriteStatus writes the status as JSON to the status file.
func (s *Service) WriteStatus(st Status) error {
	if s.deps.StatusPath == "" {
		return nil
	}
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.deps.StatusPath, append(raw, '\n'), 0644)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			close(done)
		}()

		logger := s.deps.Logger
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				st := s.GetStatus()
				logger.Debug("status",
					"view", st.View,
					"version", st.StateVersion,
					"clients", st.Clients,
					"journalPending", st.JournalPending,
				)
				if err := s.WriteStatus(st); err != nil {
					logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
