package rate

import (
	"fmt"
	"math"
	"time"

	"github.com/corey/apm/internal/ports"
)

// Defaults: 100ms ticks, a one-minute short window, a one-hour long window,
// and End as the shutdown key.
const (
	DefaultTickPeriod       = 100 * time.Millisecond
	DefaultShortWindowTicks = 600
	DefaultLongWindowTicks  = 36000
	DefaultShutdownKey      = ports.KeyEnd
)

// Config fixes the tick cadence, both window lengths, and the shutdown key.
type Config struct {
	TickPeriod       time.Duration
	ShortWindowTicks uint64
	LongWindowTicks  uint64
	ShutdownKey      ports.Key
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		TickPeriod:       DefaultTickPeriod,
		ShortWindowTicks: DefaultShortWindowTicks,
		LongWindowTicks:  DefaultLongWindowTicks,
		ShutdownKey:      DefaultShutdownKey,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.TickPeriod <= 0 {
		return fmt.Errorf("tick period must be positive, got %s", c.TickPeriod)
	}
	if c.ShortWindowTicks == 0 {
		return fmt.Errorf("short window must be at least one tick")
	}
	if c.LongWindowTicks == 0 {
		return fmt.Errorf("long window must be at least one tick")
	}
	if limit := c.MaxWindowTicks(); c.ShortWindowTicks > limit || c.LongWindowTicks > limit {
		return fmt.Errorf("window length must not exceed %d ticks at %s", limit, c.TickPeriod)
	}
	if !c.ShutdownKey.Valid() {
		return fmt.Errorf("shutdown key %q is not a known key", c.ShutdownKey)
	}
	return nil
}

// MaxWindowTicks is the longest window whose wall-clock span fits in a
// time.Duration at the configured tick period.
func (c Config) MaxWindowTicks() uint64 {
	if c.TickPeriod <= 0 {
		return 0
	}
	return uint64(math.MaxInt64 / int64(c.TickPeriod))
}

// ShortWindow returns the short window's wall-clock length.
func (c Config) ShortWindow() time.Duration {
	return time.Duration(c.ShortWindowTicks) * c.TickPeriod
}

// LongWindow returns the long window's wall-clock length.
func (c Config) LongWindow() time.Duration {
	return time.Duration(c.LongWindowTicks) * c.TickPeriod
}
