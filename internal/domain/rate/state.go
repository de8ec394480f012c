// Package rate is the action-rate telemetry engine: the shared counter state,
// the ingestor that turns input releases into actions, and the ticker that
// recomputes the short-window and long-window rates.
//
// One mutex guards all state. The ingestor, the ticker, and any number of
// readers share a single *State by reference; there are no package globals.
package rate

import (
	"sync"

	"github.com/corey/apm/internal/ports"
)

// State is the shared record of counters and derived rates.
// All methods are safe for concurrent use.
type State struct {
	mu sync.Mutex

	shutdown       bool
	short          window
	long           window
	screenAdjusted bool
}

// NewState creates a state with every counter at zero.
// cfg must already be valid (see Config.Validate).
func NewState(cfg Config) *State {
	return &State{
		short: newWindow(cfg.ShortWindowTicks, cfg.TickPeriod, true),
		// The long window spans many minutes, so it publishes its per-minute
		// mean rather than the raw count to stay comparable with the short rate.
		long: newWindow(cfg.LongWindowTicks, cfg.TickPeriod, false),
	}
}

// ingest applies one qualifying release. A shutdown-key release latches
// shutdown instead of counting. Both windows are updated in the same
// critical section so the ticker never sees one without the other.
func (s *State) ingest(isShutdownKey bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return ErrShutdown
	}
	if isShutdownKey {
		s.shutdown = true
		return ErrShutdown
	}
	s.short.record()
	s.long.record()
	return nil
}

// tickResult reports which windows closed on a tick and the rates they
// snapped to.
type tickResult struct {
	shortClosed bool
	longClosed  bool
	shortRate   uint64
	longRate    uint64
}

// advance applies one tick to both windows. Returns false, without
// mutating anything, once shutdown has been requested.
func (s *State) advance() (tickResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return tickResult{}, false
	}
	res := tickResult{
		shortClosed: s.short.advance(),
		longClosed:  s.long.advance(),
	}
	res.shortRate = s.short.rate
	res.longRate = s.long.rate
	return res, true
}

// RequestShutdown latches the shutdown flag. Idempotent.
func (s *State) RequestShutdown() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
}

// IsShutdown reports whether shutdown has been requested.
func (s *State) IsShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// Snapshot copies the current telemetry.
func (s *State) Snapshot() ports.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ports.Snapshot{
		CurrentRate:     s.short.rate,
		AverageRate:     s.long.rate,
		Shutdown:        s.shutdown,
		ScreenAdjusted:  s.screenAdjusted,
		ActionCount:     s.short.count,
		ElapsedTicks:    s.short.elapsed,
		AvgActionCount:  s.long.count,
		AvgElapsedTicks: s.long.elapsed,
	}
}

// LatchScreenAdjusted sets the renderer placement latch.
// Returns true only for the call that set it.
func (s *State) LatchScreenAdjusted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screenAdjusted {
		return false
	}
	s.screenAdjusted = true
	return true
}

var _ ports.TelemetryReader = (*State)(nil)
