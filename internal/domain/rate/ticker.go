package rate

import (
	"context"
	"time"
)

// Window names passed to Ticker.OnWindowClose.
const (
	ShortWindow = "short"
	LongWindow  = "long"
)

// Ticker recomputes rates on a fixed period and enforces window resets.
type Ticker struct {
	state  *State
	period time.Duration

	// OnWindowClose, if set, is called after a tick that closed a window,
	// outside the state lock, with the window name and its snapped rate.
	OnWindowClose func(window string, rate uint64)
}

// NewTicker creates a ticker for state running every period.
func NewTicker(state *State, period time.Duration) *Ticker {
	return &Ticker{state: state, period: period}
}

// Tick performs one recomputation. Returns false once shutdown is observed,
// in which case nothing was changed.
func (t *Ticker) Tick() bool {
	res, ok := t.state.advance()
	if !ok {
		return false
	}
	if t.OnWindowClose != nil {
		if res.shortClosed {
			t.OnWindowClose(ShortWindow, res.shortRate)
		}
		if res.longClosed {
			t.OnWindowClose(LongWindow, res.longRate)
		}
	}
	return true
}

// Run ticks every period until shutdown is observed (returns nil) or ctx is
// cancelled (returns ctx.Err()). Shutdown is noticed within one period.
func (t *Ticker) Run(ctx context.Context) error {
	tk := time.NewTicker(t.period)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			if !t.Tick() {
				return nil
			}
		}
	}
}
