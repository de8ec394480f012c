// Package synthetic implements deterministic ports.EventSource adapters for
// demos, platforms without a capture backend, and automated tests.
package synthetic

import (
	"context"
	"time"

	"github.com/corey/apm/internal/ports"
)

// Script emits a fixed timeline of events as fast as emit accepts them,
// then returns nil.
type Script []ports.InputEvent

// Name returns "script".
func (s Script) Name() string { return "script" }

// Stream emits every event in order.
func (s Script) Stream(ctx context.Context, emit func(ports.InputEvent) error) error {
	for _, ev := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(ev); err != nil {
			return err
		}
	}
	return nil
}

// Typing builds a script of n press/release pairs, alternating keys and
// left clicks, optionally followed by a release of stopKey.
func Typing(n int, stopKey ports.Key) Script {
	s := make(Script, 0, 2*n+2)
	for i := 0; i < n; i++ {
		s = append(s, pair(i)...)
	}
	if stopKey != ports.KeyUnknown {
		s = append(s,
			ports.InputEvent{Kind: ports.KeyPress, Key: stopKey},
			ports.InputEvent{Kind: ports.KeyRelease, Key: stopKey},
		)
	}
	return s
}

// typingKeys cycles through home-row keys.
var typingKeys = []ports.Key{ports.KeyA, ports.KeyS, ports.KeyD, ports.KeyF}

// pair returns the press/release pair for the i-th synthetic action.
// Every fourth action is a left click.
func pair(i int) []ports.InputEvent {
	if i%4 == 3 {
		return []ports.InputEvent{
			{Kind: ports.ButtonPress, Button: ports.ButtonLeft},
			{Kind: ports.ButtonRelease, Button: ports.ButtonLeft},
		}
	}
	k := typingKeys[i%len(typingKeys)]
	return []ports.InputEvent{
		{Kind: ports.KeyPress, Key: k},
		{Kind: ports.KeyRelease, Key: k},
	}
}

// Metronome emits one action (a press/release pair) at a fixed rate until
// ctx is cancelled. When StopAfter is positive it releases StopKey after
// that many actions and returns.
type Metronome struct {
	RatePerMinute int
	StopAfter     int
	StopKey       ports.Key

	// Clock stamps events; defaults to time.Now.
	Clock func() time.Time
}

// Name returns "synthetic".
func (m *Metronome) Name() string { return "synthetic" }

// Interval returns the gap between actions.
func (m *Metronome) Interval() time.Duration {
	if m.RatePerMinute <= 0 {
		return time.Minute
	}
	return time.Minute / time.Duration(m.RatePerMinute)
}

// Stream emits actions on a ticker.
func (m *Metronome) Stream(ctx context.Context, emit func(ports.InputEvent) error) error {
	clock := m.Clock
	if clock == nil {
		clock = time.Now
	}

	tk := time.NewTicker(m.Interval())
	defer tk.Stop()

	for i := 0; ; i++ {
		if m.StopAfter > 0 && i == m.StopAfter {
			return emit(ports.InputEvent{Kind: ports.KeyRelease, Key: m.StopKey, Time: clock()})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
		}
		for _, ev := range pair(i) {
			ev.Time = clock()
			if err := emit(ev); err != nil {
				return err
			}
		}
	}
}
