package rate

import (
	"math"
	"time"
)

// window is one counting cycle: actions observed and ticks elapsed since the
// last reset, plus the derived per-minute rate.
// Not thread-safe: caller (State.mu) must serialize access.
type window struct {
	length     uint64        // bound on elapsed, in ticks
	tickPeriod time.Duration // wall-clock length of one tick

	// snapRaw selects the value published when the window closes:
	// the raw completed-window count, or the count normalized to a
	// per-minute mean over the window length.
	snapRaw bool

	count   uint64
	elapsed uint64
	rate    uint64
}

func newWindow(length uint64, tickPeriod time.Duration, snapRaw bool) window {
	return window{length: length, tickPeriod: tickPeriod, snapRaw: snapRaw}
}

// record counts one action.
func (w *window) record() {
	w.count++
}

// advance applies one tick: extend the window by one tick, then either
// close it (the bound was reached) or project the rate over the elapsed time.
// Returns true when the window closed on this tick.
func (w *window) advance() bool {
	w.elapsed++
	if w.elapsed >= w.length {
		if w.snapRaw {
			w.rate = w.count
		} else {
			w.rate = perMinute(w.count, time.Duration(w.length)*w.tickPeriod)
		}
		w.count = 0
		w.elapsed = 0
		return true
	}
	w.rate = perMinute(w.count, time.Duration(w.elapsed)*w.tickPeriod)
	return false
}

// perMinute extrapolates count observed over span to a rate per minute,
// rounded to the nearest integer. A non-positive span yields 0.
func perMinute(count uint64, span time.Duration) uint64 {
	minutes := span.Minutes()
	if minutes <= 0 || count == 0 {
		return 0
	}
	return uint64(math.Round(float64(count) / minutes))
}
