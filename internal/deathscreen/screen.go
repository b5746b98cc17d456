// internal/deathscreen/screen.go
package deathscreen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/pkg/core"
)

// FocusDelay keeps the click that focused the overlay from releasing it again.
const FocusDelay = time.Second

// TickInterval is the countdown resolution.
const TickInterval = time.Second

var (
	// ErrFocusLocked is returned when focus is released before FocusDelay has passed.
	ErrFocusLocked = errors.New("focus cannot be released yet")
	// ErrCannotRespawn is returned while the timer runs and respawning is not allowed.
	ErrCannotRespawn = errors.New("respawn not available")
	// ErrNoMedics is returned when no medic is on duty.
	ErrNoMedics = errors.New("no medics on duty")
)

// Dependencies holds all dependencies needed by a death screen
type Dependencies struct {
	Gateway  gateway.Gateway
	Now      func() time.Time
	Logger   *slog.Logger
	Interval time.Duration
	// Changed is called after every tick.
	Changed func()
}

// Screen is the local state of the death screen.
type Screen struct {
	deps Dependencies

	mu      sync.Mutex
	data    core.DeathScreenData
	timer   Timer
	shownAt time.Time
}

// NewScreen shows the death screen and starts the focus delay.
func NewScreen(data core.DeathScreenData, deps Dependencies) *Screen {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = TickInterval
	}
	s := &Screen{deps: deps, data: data, shownAt: deps.Now()}
	s.timer.Reset(data.Seconds)
	return s
}

// Update replaces the screen data. A new seconds value restarts the countdown.
func (s *Screen) Update(data core.DeathScreenData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data.Seconds != s.data.Seconds {
		s.timer.Reset(data.Seconds)
	}
	s.data = data
}

// TimeLeft returns the seconds remaining.
func (s *Screen) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.TimeLeft
}

// Tick advances the countdown by one second and tells the host when it ends.
func (s *Screen) Tick(ctx context.Context) (bool, error) {
	s.mu.Lock()
	finished := s.timer.Tick()
	s.mu.Unlock()

	if !finished {
		return false, nil
	}
	if _, err := s.deps.Gateway.Post(ctx, gateway.EndpointDeathTimerFinished, struct{}{}); err != nil {
		return true, err
	}
	return true, nil
}

// Run ticks until ctx is done.
func (s *Screen) Run(ctx context.Context) {
	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.deps.Logger.Warn("Failed to report finished death timer", "error", err)
			}
			if s.deps.Changed != nil {
				s.deps.Changed()
			}
		}
	}
}

// CanDisableFocus reports whether the focus delay has passed.
func (s *Screen) CanDisableFocus(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.shownAt) >= FocusDelay
}

// DisableFocus releases the overlay's input focus.
func (s *Screen) DisableFocus(ctx context.Context) error {
	if !s.CanDisableFocus(s.deps.Now()) {
		return ErrFocusLocked
	}
	_, err := s.deps.Gateway.Post(ctx, gateway.EndpointDisableFocus, struct{}{})
	return err
}

// CanRespawn reports whether the respawn button is offered: the host allows
// giving up, or the countdown has ended.
func (s *Screen) CanRespawn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canRespawn()
}

func (s *Screen) canRespawn() bool {
	return s.data.CanRespawn || s.timer.Expired()
}

// Respawn asks the host to respawn the player.
func (s *Screen) Respawn(ctx context.Context) error {
	if !s.CanRespawn() {
		return ErrCannotRespawn
	}
	_, err := s.deps.Gateway.Post(ctx, gateway.EndpointDeathRespawn, struct{}{})
	return err
}

// CallMedic alerts the medics on duty.
func (s *Screen) CallMedic(ctx context.Context) error {
	s.mu.Lock()
	medics := s.data.MedicsOnDuty
	s.mu.Unlock()
	if medics <= 0 {
		return ErrNoMedics
	}
	_, err := s.deps.Gateway.Post(ctx, gateway.EndpointDeathCallMedic, struct{}{})
	return err
}

// ViewModel is everything the death screen renders.
type ViewModel struct {
	Message       string `json:"message"`
	Title         string `json:"title"`
	TimeLeft      int    `json:"timeLeft"`
	Digits        [4]int `json:"digits"`
	Clock         string `json:"clock"`
	ShowCallMedic bool   `json:"showCallMedic"`
	CallMedic     string `json:"callMedic,omitempty"`
	ShowRespawn   bool   `json:"showRespawn"`
	Respawn       string `json:"respawn,omitempty"`
}

// ViewModel renders the screen.
func (s *Screen) ViewModel() ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.data.Translations
	vm := ViewModel{
		Message:  s.data.Message,
		Title:    t.T("disabled", "Disabled"),
		TimeLeft: s.timer.TimeLeft,
		Digits:   s.timer.Digits(),
		Clock:    s.timer.String(),
	}
	if s.data.MedicsOnDuty > 0 {
		vm.ShowCallMedic = true
		vm.CallMedic = fmt.Sprintf("%s (%d %s)", t.T("call_medic", "Call Medic"), s.data.MedicsOnDuty, t.T("available", "Available"))
	}
	if s.canRespawn() {
		vm.ShowRespawn = true
		if s.timer.Expired() {
			vm.Respawn = t.T("respawn", "Respawn")
		} else {
			vm.Respawn = t.T("give_up", "Give Up")
		}
	}
	return vm
}
