// internal/inspection/hold.go
package inspection

import (
	"context"
	"fmt"
	"time"

	"github.com/qc-advancedmedic/nui/internal/gateway"
)

// Hold is a hold-to-complete check.
type Hold string

const (
	HoldVitals      Hold = "vitals"
	HoldTemperature Hold = "temperature"
)

// A hold completes after about three seconds of ticks.
const (
	HoldStep     = 3.33
	HoldInterval = 100 * time.Millisecond
)

type hold struct {
	active   bool
	progress float64
}

// StartHold begins a check. It returns false when the check is already running.
func (s *Session) StartHold(h Hold) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.holds[h]
	if !ok || st.active {
		return false
	}
	*st = hold{active: true}
	return true
}

// StopHold abandons a check and resets its progress.
func (s *Session) StopHold(h Hold) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.holds[h]; ok {
		*st = hold{}
	}
}

// Progress returns the progress of a check in percent.
func (s *Session) Progress(h Hold) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.holds[h]; ok {
		return st.progress
	}
	return 0
}

// Tick advances a running check by one step. When the check completes the
// host is told and done is true.
func (s *Session) Tick(ctx context.Context, h Hold) (done bool, err error) {
	s.mu.Lock()
	st, ok := s.holds[h]
	if !ok || !st.active {
		s.mu.Unlock()
		return false, nil
	}
	st.progress += HoldStep
	if st.progress < 100 {
		s.mu.Unlock()
		return false, nil
	}
	st.progress = 100
	st.active = false

	var notice any
	switch h {
	case HoldVitals:
		s.vitalsChecked = true
	case HoldTemperature:
		s.temperatureChecked = true
		s.temperature = Temperature(s.data)
		notice = map[string]any{"playerId": s.data.PlayerID, "temperature": s.temperature}
	}
	s.mu.Unlock()

	switch h {
	case HoldVitals:
		err = s.RequestVitals(ctx)
	case HoldTemperature:
		if _, perr := s.deps.Gateway.Post(ctx, gateway.EndpointTemperatureChecked, notice); perr != nil {
			err = fmt.Errorf("temperature notice failed: %w", perr)
		}
	}
	return true, err
}

// RunHold ticks a started check until it completes, is stopped or ctx ends.
func (s *Session) RunHold(ctx context.Context, h Hold) error {
	ticker := time.NewTicker(HoldInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := s.Tick(ctx, h)
			s.changed()
			if err != nil || done {
				return err
			}
			if !s.holding(h) {
				return nil
			}
		}
	}
}

func (s *Session) holding(h Hold) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.holds[h]
	return ok && st.active
}

// StartVitalsCheck begins the hold-to-check pulse reading.
func (s *Session) StartVitalsCheck() bool { return s.StartHold(HoldVitals) }

// StopVitalsCheck abandons the pulse reading.
func (s *Session) StopVitalsCheck() { s.StopHold(HoldVitals) }

// TickVitals advances the pulse reading.
func (s *Session) TickVitals(ctx context.Context) (bool, error) { return s.Tick(ctx, HoldVitals) }

// StartTemperatureCheck begins the hold-to-check temperature reading.
func (s *Session) StartTemperatureCheck() bool { return s.StartHold(HoldTemperature) }

// StopTemperatureCheck abandons the temperature reading.
func (s *Session) StopTemperatureCheck() { s.StopHold(HoldTemperature) }

// TickTemperature advances the temperature reading.
func (s *Session) TickTemperature(ctx context.Context) (bool, error) {
	return s.Tick(ctx, HoldTemperature)
}
