package watch

import (
	"testing"
	"time"
)

// manualTimers captures scheduled callbacks so tests decide when, and in
// which order, timers fire.
type manualTimers struct {
	pending []func()
}

func (m *manualTimers) install(t *testing.T) {
	t.Helper()
	orig := afterFunc
	t.Cleanup(func() { afterFunc = orig })
	afterFunc = func(_ time.Duration, f func()) *time.Timer {
		m.pending = append(m.pending, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}
}

func TestDebouncer(t *testing.T) {
	tests := []struct {
		name      string
		drive     func(d *debouncer, timers *manualTimers)
		scheduled int
		wantCalls int
	}{
		{
			name: "single trigger fires",
			drive: func(d *debouncer, timers *manualTimers) {
				d.Trigger()
				timers.pending[0]()
			},
			scheduled: 1,
			wantCalls: 1,
		},
		{
			name: "burst fires once for the latest trigger",
			drive: func(d *debouncer, timers *manualTimers) {
				d.Trigger()
				d.Trigger()
				d.Trigger()
				for _, f := range timers.pending {
					f()
				}
			},
			scheduled: 3,
			wantCalls: 1,
		},
		{
			name: "stale callback after newer one is ignored",
			drive: func(d *debouncer, timers *manualTimers) {
				d.Trigger()
				d.Trigger()
				timers.pending[1]()
				timers.pending[0]()
			},
			scheduled: 2,
			wantCalls: 1,
		},
		{
			name: "stop drops pending callback",
			drive: func(d *debouncer, timers *manualTimers) {
				d.Trigger()
				d.Stop()
				timers.pending[0]()
			},
			scheduled: 1,
			wantCalls: 0,
		},
		{
			name: "trigger after stop fires again",
			drive: func(d *debouncer, timers *manualTimers) {
				d.Trigger()
				d.Stop()
				d.Trigger()
				timers.pending[1]()
			},
			scheduled: 2,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timers := &manualTimers{}
			timers.install(t)
			calls := 0
			d := newDebouncer(time.Second, func() { calls++ })

			tt.drive(d, timers)

			if len(timers.pending) != tt.scheduled {
				t.Fatalf("scheduled = %d, want %d", len(timers.pending), tt.scheduled)
			}
			if calls != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}
