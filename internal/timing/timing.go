// Package timing measures how long each stage of a completion request takes.
package timing

import (
	"fmt"
	"strings"
	"time"
)

// Timer records laps: the time spent between consecutive marks.
// A Timer is owned by one request and is not safe for concurrent use.
type Timer struct {
	start time.Time
	last  time.Time
	laps  map[string]time.Duration
	order []string
	now   func() time.Time
}

// NewTimer creates a timer started now
func NewTimer() *Timer {
	return newTimer(time.Now)
}

func newTimer(now func() time.Time) *Timer {
	t := &Timer{now: now}
	t.Reset()
	return t
}

// Lap records the time since the previous lap (or since start) under label.
// Repeated labels accumulate.
func (t *Timer) Lap(label string) time.Duration {
	current := t.now()
	d := current.Sub(t.last)
	t.last = current
	if _, seen := t.laps[label]; !seen {
		t.order = append(t.order, label)
	}
	t.laps[label] += d
	return d
}

// Elapsed returns total elapsed time since the timer started
func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Get returns the accumulated duration for label
func (t *Timer) Get(label string) (time.Duration, bool) {
	d, ok := t.laps[label]
	return d, ok
}

// Labels returns lap labels in first-recorded order
func (t *Timer) Labels() []string {
	return append([]string(nil), t.order...)
}

// Summary formats every lap in milliseconds
func (t *Timer) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %.3fms", ms(t.Elapsed()))
	if len(t.order) == 0 {
		return b.String()
	}

	b.WriteString(" (")
	for i, label := range t.order {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %.3fms", label, ms(t.laps[label]))
	}
	b.WriteString(")")
	return b.String()
}

// Reset restarts the timer and forgets every lap
func (t *Timer) Reset() {
	t.start = t.now()
	t.last = t.start
	t.laps = make(map[string]time.Duration)
	t.order = nil
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
