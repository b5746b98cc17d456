package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/qc-advancedmedic/nui/internal/deathscreen"
	"github.com/qc-advancedmedic/nui/internal/dispatcher"
	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/internal/influx"
	"github.com/qc-advancedmedic/nui/internal/inspection"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/medical"
	"github.com/qc-advancedmedic/nui/internal/messages"
	"github.com/qc-advancedmedic/nui/internal/state"
)

// ErrNoPanel is returned for actions aimed at a panel that is not open.
var ErrNoPanel = errors.New("panel not open")

// OutcomeWriter receives the result of every host callback.
type OutcomeWriter interface {
	WriteOutcome(ctx context.Context, o influx.Outcome) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Store   *state.Store
	Gateway gateway.Gateway
	Journal journal.Backend
	// Outcomes is optional.
	Outcomes OutcomeWriter
	Logger   *slog.Logger
	Rand     *rand.Rand
	Now      func() time.Time
	// DeathTick overrides the death screen countdown interval.
	DeathTick time.Duration
}

// Service routes host pushes and overlay actions to the open screen.
type Service struct {
	deps       Dependencies
	gw         gateway.Gateway
	dispatcher *dispatcher.Dispatcher

	base   context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	session      *inspection.Session
	panel        *medical.Panel
	screen       *deathscreen.Screen
	screenCancel context.CancelFunc
	holds        map[inspection.Hold]context.CancelFunc
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Store == nil {
		deps.Store = state.NewStore()
	}
	base, cancel := context.WithCancel(context.Background())
	s := &Service{
		deps:   deps,
		base:   base,
		cancel: cancel,
		holds:  make(map[inspection.Hold]context.CancelFunc),
	}
	s.gw = &recordingGateway{next: deps.Gateway, svc: s}
	return s
}

// Store returns the state store the service reduces pushes into.
func (s *Service) Store() *state.Store {
	return s.deps.Store
}

// Gateway returns the gateway the panels post through. Every call is journaled.
func (s *Service) Gateway() gateway.Gateway {
	return s.gw
}

// Close stops the death screen countdown and any running check.
func (s *Service) Close() {
	s.mu.Lock()
	s.stopScreenLocked()
	s.stopHoldsLocked()
	s.mu.Unlock()
	s.cancel()
}

// HandlePush decodes a host message and dispatches it. Tolerated problems
// are returned as warnings.
func (s *Service) HandlePush(ctx context.Context, raw []byte) ([]string, error) {
	p, err := messages.DecodePush(raw)
	if err != nil {
		return nil, err
	}
	for _, w := range p.Warnings {
		s.deps.Logger.Warn("Push normalized", "type", p.Type, "warning", w)
	}
	if s.dispatcher == nil {
		return p.Warnings, s.applyPush(ctx, p)
	}
	_, err = s.dispatcher.Dispatch(ctx, dispatcher.Event{Command: p.Type, Payload: p, Timestamp: s.deps.Now()})
	return p.Warnings, err
}

// HandleAction decodes an overlay action and dispatches it.
func (s *Service) HandleAction(ctx context.Context, raw []byte) (any, error) {
	a, err := messages.DecodeAction(raw)
	if err != nil {
		return nil, err
	}
	if s.dispatcher == nil {
		return s.runAction(ctx, a)
	}
	return s.dispatcher.Dispatch(ctx, dispatcher.Event{Command: a.Type, Payload: a, Timestamp: s.deps.Now()})
}

// ViewModel is the state the overlay renders: the top-level store plus the
// view model of whichever screen is open.
type ViewModel struct {
	View        state.View             `json:"currentView"`
	Version     uint64                 `json:"version"`
	DeathScreen *deathscreen.ViewModel `json:"deathScreen,omitempty"`
	Medical     *medical.ViewModel     `json:"medicalPanel,omitempty"`
	Inspection  *inspection.ViewModel  `json:"inspectionPanel,omitempty"`
}

// ViewModel renders the current state.
func (s *Service) ViewModel() ViewModel {
	app, version := s.deps.Store.Get()
	s.mu.Lock()
	session, panel, screen := s.session, s.panel, s.screen
	s.mu.Unlock()

	vm := ViewModel{View: app.View, Version: version}
	switch app.View {
	case state.ViewDeath:
		if screen != nil {
			d := screen.ViewModel()
			vm.DeathScreen = &d
		}
	case state.ViewMedical:
		if panel != nil {
			m := panel.ViewModel()
			vm.Medical = &m
		}
	case state.ViewInspection:
		if session != nil {
			i := session.ViewModel()
			vm.Inspection = &i
		}
	}
	return vm
}

func (s *Service) record(ctx context.Context, e journal.Entry) {
	if s.deps.Journal == nil {
		return
	}
	if err := s.deps.Journal.Record(ctx, e); err != nil {
		s.deps.Logger.Warn("Failed to journal entry", "kind", e.Kind, "type", e.Type, "error", err)
	}
}

func (s *Service) changed() {
	s.deps.Store.Touch()
}

func (s *Service) activeSession() (*inspection.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, fmt.Errorf("%w: inspection", ErrNoPanel)
	}
	return s.session, nil
}

func (s *Service) activePanel() (*medical.Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panel == nil {
		return nil, fmt.Errorf("%w: medical", ErrNoPanel)
	}
	return s.panel, nil
}

func (s *Service) activeScreen() (*deathscreen.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == nil {
		return nil, fmt.Errorf("%w: death screen", ErrNoPanel)
	}
	return s.screen, nil
}

func (s *Service) stopScreenLocked() {
	if s.screenCancel != nil {
		s.screenCancel()
		s.screenCancel = nil
	}
	s.screen = nil
}

func (s *Service) stopHoldsLocked() {
	for h, cancel := range s.holds {
		cancel()
		delete(s.holds, h)
	}
}

func (s *Service) hide() {
	s.deps.Store.Update(func(app state.App) state.App {
		app.View = state.ViewHidden
		return app
	})
}
