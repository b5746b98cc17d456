package deathscreen

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/pkg/core"
)

func TestTimer_Tick(t *testing.T) {
	var tm Timer
	tm.Reset(3)

	var finished int
	for i := 0; i < 6; i++ {
		if tm.Tick() {
			finished++
		}
	}
	assert.Equal(t, 1, finished, "finishes exactly once")
	assert.Equal(t, 0, tm.TimeLeft)
	assert.True(t, tm.Expired())

	tm.Reset(-5)
	assert.Equal(t, 0, tm.TimeLeft)
	assert.False(t, tm.Tick())
}

func TestTimer_Digits(t *testing.T) {
	tests := []struct {
		seconds int
		want    [4]int
		clock   string
	}{
		{0, [4]int{0, 0, 0, 0}, "00:00"},
		{59, [4]int{0, 0, 5, 9}, "00:59"},
		{300, [4]int{0, 5, 0, 0}, "05:00"},
		{754, [4]int{1, 2, 3, 4}, "12:34"},
		{6000 + 59, [4]int{9, 9, 5, 9}, "99:59"},
	}
	for _, tt := range tests {
		tm := Timer{TimeLeft: tt.seconds}
		assert.Equal(t, tt.want, tm.Digits(), tt.seconds)
		assert.Equal(t, tt.clock, tm.String())
	}
}

func newScreen(t *testing.T, data core.DeathScreenData, now *time.Time) (*Screen, *gateway.Mock) {
	t.Helper()
	gw := gateway.NewMock(1, 0, nil)
	s := NewScreen(data, Dependencies{
		Gateway: gw,
		Now:     func() time.Time { return *now },
	})
	return s, gw
}

func TestScreen_TickReportsFinish(t *testing.T) {
	now := time.Now()
	s, gw := newScreen(t, core.DeathScreenData{Seconds: 2}, &now)
	ctx := context.Background()

	done, err := s.Tick(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = s.Tick(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = s.Tick(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	assert.Equal(t, []string{gateway.EndpointDeathTimerFinished}, gw.Endpoints())
}

func TestScreen_UpdateRestartsOnNewSeconds(t *testing.T) {
	now := time.Now()
	s, _ := newScreen(t, core.DeathScreenData{Seconds: 10}, &now)
	_, _ = s.Tick(context.Background())
	assert.Equal(t, 9, s.TimeLeft())

	s.Update(core.DeathScreenData{Seconds: 10, Message: "still down"})
	assert.Equal(t, 9, s.TimeLeft(), "same seconds keep the countdown")

	s.Update(core.DeathScreenData{Seconds: 30})
	assert.Equal(t, 30, s.TimeLeft())
}

func TestScreen_FocusDelay(t *testing.T) {
	now := time.Now()
	s, gw := newScreen(t, core.DeathScreenData{Seconds: 10}, &now)
	ctx := context.Background()

	assert.ErrorIs(t, s.DisableFocus(ctx), ErrFocusLocked)
	assert.Empty(t, gw.Endpoints())

	now = now.Add(FocusDelay)
	require.NoError(t, s.DisableFocus(ctx))
	assert.Equal(t, []string{gateway.EndpointDisableFocus}, gw.Endpoints())
}

func TestScreen_Respawn(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	s, gw := newScreen(t, core.DeathScreenData{Seconds: 1}, &now)
	assert.ErrorIs(t, s.Respawn(ctx), ErrCannotRespawn)
	assert.False(t, s.ViewModel().ShowRespawn)

	_, err := s.Tick(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Respawn(ctx))
	assert.Equal(t, "Respawn", s.ViewModel().Respawn)
	assert.Equal(t, []string{gateway.EndpointDeathTimerFinished, gateway.EndpointDeathRespawn}, gw.Endpoints())

	s, _ = newScreen(t, core.DeathScreenData{Seconds: 60, CanRespawn: true}, &now)
	require.NoError(t, s.Respawn(ctx))
	assert.Equal(t, "Give Up", s.ViewModel().Respawn)
}

func TestScreen_CallMedic(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	s, _ := newScreen(t, core.DeathScreenData{Seconds: 60}, &now)
	assert.ErrorIs(t, s.CallMedic(ctx), ErrNoMedics)
	assert.False(t, s.ViewModel().ShowCallMedic)

	s, gw := newScreen(t, core.DeathScreenData{
		Seconds:      60,
		MedicsOnDuty: 2,
		Translations: core.Translations{"call_medic": "Appeler un médecin", "available": "disponibles"},
	}, &now)
	require.NoError(t, s.CallMedic(ctx))
	assert.Equal(t, []string{gateway.EndpointDeathCallMedic}, gw.Endpoints())
	assert.Equal(t, "Appeler un médecin (2 disponibles)", s.ViewModel().CallMedic)
}

func TestScreen_Run(t *testing.T) {
	var changes atomic.Int32
	gw := gateway.NewMock(1, 0, nil)
	s := NewScreen(core.DeathScreenData{Seconds: 2}, Dependencies{
		Gateway:  gw,
		Interval: time.Millisecond,
		Changed:  func() { changes.Add(1) },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.Eventually(t, func() bool { return s.TimeLeft() == 0 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		return len(gw.Endpoints()) == 1
	}, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return changes.Load() >= 2 }, time.Second, time.Millisecond)
}
