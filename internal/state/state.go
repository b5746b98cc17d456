// internal/state/state.go
package state

import (
	"context"
	"sync"

	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/internal/messages"
	"github.com/qc-advancedmedic/nui/pkg/core"
	"github.com/qc-advancedmedic/nui/pkg/nui"
)

// View is the screen currently shown by the overlay.
type View string

const (
	ViewHidden     View = "hidden"
	ViewDeath      View = "death-screen"
	ViewMedical    View = "medical-panel"
	ViewInspection View = "inspection-panel"
)

// App is the overlay's top-level state.
type App struct {
	View        View                 `json:"currentView"`
	DeathScreen core.DeathScreenData `json:"deathScreenData"`
	Medical     core.MedicalData     `json:"medicalData"`
	Inspection  core.InspectionData  `json:"inspectionData"`
}

// Initial is the state before the host sends anything.
func Initial() App {
	return App{View: ViewHidden}
}

// Reduce applies a host push to the state. Types that do not concern the
// top-level state leave it unchanged.
func Reduce(app App, p messages.Push) App {
	switch p.Type {
	case nui.PushShowDeathScreen:
		if p.DeathScreen != nil {
			app.DeathScreen = *p.DeathScreen
		}
		app.View = ViewDeath
	case nui.PushUpdateDeathTimer:
		if p.DeathPatch != nil {
			app.DeathScreen = p.DeathPatch.Apply(app.DeathScreen)
		}
	case nui.PushHideDeathScreen, nui.PushHideAll:
		app.View = ViewHidden
	case nui.PushShowMedicalPanel:
		if p.Medical != nil {
			app.Medical = *p.Medical
		}
		app.View = ViewMedical
	case nui.PushShowInspectionPanel:
		if p.Inspection != nil {
			app.Inspection = *p.Inspection
		}
		app.View = ViewInspection
	case nui.PushUpdateMedicalData:
		if p.MedicalPatch != nil {
			app.Medical = p.MedicalPatch.Apply(app.Medical)
		}
	}
	return app
}

// Listener is notified after every change with the new state and its version.
type Listener func(app App, version uint64)

// Store holds the state and fans changes out to listeners.
type Store struct {
	mu        sync.RWMutex
	app       App
	version   uint64
	nextID    int
	listeners map[int]Listener
}

// NewStore creates a store in the initial state.
func NewStore() *Store {
	return &Store{app: Initial(), listeners: make(map[int]Listener)}
}

// Get returns the current state and its version.
func (s *Store) Get() (App, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.app, s.version
}

// Apply reduces a push into the state and notifies listeners.
func (s *Store) Apply(p messages.Push) App {
	return s.Update(func(app App) App { return Reduce(app, p) })
}

// Update replaces the state with fn's result and notifies listeners.
func (s *Store) Update(fn func(App) App) App {
	s.mu.Lock()
	s.app = fn(s.app)
	s.version++
	app, version := s.app, s.version
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(app, version)
	}
	return app
}

// Touch notifies listeners without changing the state, for changes held
// by the open panel rather than the store.
func (s *Store) Touch() {
	s.Update(func(app App) App { return app })
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

// Subscribe registers a listener. The returned function removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// HideAll hides every screen and tells the host to release focus.
func (s *Store) HideAll(ctx context.Context, gw gateway.Gateway) error {
	s.Update(func(app App) App {
		app.View = ViewHidden
		return app
	})
	_, err := gw.Post(ctx, gateway.EndpointCloseMedicalPanel, struct{}{})
	return err
}
