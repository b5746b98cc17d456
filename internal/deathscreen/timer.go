// internal/deathscreen/timer.go
package deathscreen

import "fmt"

const maxMinutes = 99

// Timer counts the respawn delay down in whole seconds.
type Timer struct {
	TimeLeft int
}

// Reset restarts the countdown. Negative values count as zero.
func (t *Timer) Reset(seconds int) {
	t.TimeLeft = max(seconds, 0)
}

// Tick removes one second. It reports true only on the tick that reaches zero.
func (t *Timer) Tick() bool {
	if t.TimeLeft <= 0 {
		return false
	}
	t.TimeLeft--
	return t.TimeLeft == 0
}

// Expired reports whether the countdown is over.
func (t Timer) Expired() bool {
	return t.TimeLeft <= 0
}

// Digits splits the time left into the four MM:SS digits.
func (t Timer) Digits() [4]int {
	minutes := min(t.TimeLeft/60, maxMinutes)
	seconds := t.TimeLeft % 60
	if t.TimeLeft < 0 {
		minutes, seconds = 0, 0
	}
	return [4]int{minutes / 10, minutes % 10, seconds / 10, seconds % 10}
}

// String formats the time left as MM:SS.
func (t Timer) String() string {
	d := t.Digits()
	return fmt.Sprintf("%d%d:%d%d", d[0], d[1], d[2], d[3])
}
