package rate

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/corey/apm/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func release(k ports.Key) ports.InputEvent {
	return ports.InputEvent{Kind: ports.KeyRelease, Key: k}
}

func click() ports.InputEvent {
	return ports.InputEvent{Kind: ports.ButtonRelease, Button: ports.ButtonLeft}
}

func newEngine(t *testing.T, cfg Config) (*State, *Ingestor, *Ticker) {
	t.Helper()
	require.NoError(t, cfg.Validate())
	s := NewState(cfg)
	return s, NewIngestor(s, cfg.ShutdownKey), NewTicker(s, cfg.TickPeriod)
}

func TestState_StartsZeroed(t *testing.T) {
	s := NewState(DefaultConfig())
	assert.Equal(t, ports.Snapshot{}, s.Snapshot())
	assert.False(t, s.IsShutdown())
}

func TestState_SnapshotIdempotent(t *testing.T) {
	s, in, tk := newEngine(t, DefaultConfig())
	for i := 0; i < 7; i++ {
		require.NoError(t, in.Ingest(release(ports.KeyA)))
	}
	tk.Tick()
	tk.Tick()

	first := s.Snapshot()
	second := s.Snapshot()
	assert.Equal(t, first, second, "reads without an intervening tick or event must agree")
}

func TestState_WindowClosesWithExactCount(t *testing.T) {
	// 120 releases spread evenly over 600 ticks of 100ms.
	s, in, tk := newEngine(t, DefaultConfig())

	for i := 0; i < DefaultShortWindowTicks; i++ {
		if i%5 == 0 {
			require.NoError(t, in.Ingest(release(ports.KeyQ)))
		}
		require.True(t, tk.Tick())
	}

	snap := s.Snapshot()
	assert.Equal(t, uint64(120), snap.CurrentRate, "closed window publishes the raw count")
	assert.Equal(t, uint64(0), snap.ActionCount)
	assert.Equal(t, uint64(0), snap.ElapsedTicks)
}

func TestState_ExactCountForAnyN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShortWindowTicks = 20

	for _, n := range []int{0, 1, 19, 57, 400} {
		s, in, tk := newEngine(t, cfg)
		for i := 0; i < n; i++ {
			require.NoError(t, in.Ingest(click()))
		}
		for i := 0; i < 20; i++ {
			tk.Tick()
		}
		assert.Equal(t, uint64(n), s.Snapshot().CurrentRate, "n=%d", n)
	}
}

func TestState_EmptyWindowClosesAtZero(t *testing.T) {
	s, _, tk := newEngine(t, DefaultConfig())
	for i := 0; i < DefaultShortWindowTicks; i++ {
		tk.Tick()
	}
	snap := s.Snapshot()
	assert.Equal(t, uint64(0), snap.CurrentRate)
	assert.Equal(t, uint64(0), snap.ElapsedTicks)
}

func TestState_Projection(t *testing.T) {
	tickMinutes := DefaultTickPeriod.Minutes()

	for _, ticks := range []int{1, 7, 150, 300, 599} {
		for _, actions := range []int{0, 1, 13, 120} {
			s, in, tk := newEngine(t, DefaultConfig())
			for i := 0; i < actions; i++ {
				require.NoError(t, in.Ingest(release(ports.KeySpace)))
			}
			for i := 0; i < ticks; i++ {
				tk.Tick()
			}

			want := uint64(math.Round(float64(actions) / (float64(ticks) * tickMinutes)))
			snap := s.Snapshot()
			assert.Equal(t, want, snap.CurrentRate, "ticks=%d actions=%d", ticks, actions)
			assert.Equal(t, uint64(actions), snap.ActionCount)
			assert.Equal(t, uint64(ticks), snap.ElapsedTicks)
		}
	}
}

func TestState_ProjectionKnownValues(t *testing.T) {
	s, in, tk := newEngine(t, DefaultConfig())
	for i := 0; i < 10; i++ {
		in.Ingest(release(ports.KeyW))
	}
	for i := 0; i < 300; i++ { // 30s
		tk.Tick()
	}
	assert.Equal(t, uint64(20), s.Snapshot().CurrentRate, "10 actions in 30s projects to 20/min")
	assert.Equal(t, uint64(20), s.Snapshot().AverageRate, "long window projects the same way")
}

func TestState_LongWindowIndependent(t *testing.T) {
	cfg := Config{
		TickPeriod:       100 * time.Millisecond,
		ShortWindowTicks: 10,
		LongWindowTicks:  30,
		ShutdownKey:      ports.KeyEnd,
	}
	s, in, tk := newEngine(t, cfg)

	var closes []string
	tk.OnWindowClose = func(window string, rate uint64) {
		closes = append(closes, window)
	}

	// Two actions per short window, three short windows = one long window.
	for i := 0; i < 30; i++ {
		if i%5 == 0 {
			require.NoError(t, in.Ingest(release(ports.KeyE)))
		}
		tk.Tick()
		snap := s.Snapshot()
		if (i+1)%10 == 0 {
			assert.Equal(t, uint64(2), snap.CurrentRate, "tick %d", i+1)
		}
		if i+1 < 30 {
			assert.Equal(t, uint64(i+1), snap.AvgElapsedTicks, "long window keeps counting across short resets")
		}
	}

	snap := s.Snapshot()
	// 6 actions over 3s is 120 per minute.
	assert.Equal(t, uint64(120), snap.AverageRate)
	assert.Equal(t, uint64(0), snap.AvgActionCount)
	assert.Equal(t, uint64(0), snap.AvgElapsedTicks)
	assert.Equal(t, []string{ShortWindow, ShortWindow, ShortWindow, LongWindow}, closes)
}

func TestState_ShutdownKeyNotCounted(t *testing.T) {
	s, in, tk := newEngine(t, DefaultConfig())
	for i := 0; i < 50; i++ {
		require.NoError(t, in.Ingest(release(ports.KeyD)))
	}
	tk.Tick()

	err := in.Ingest(release(ports.KeyEnd))
	assert.ErrorIs(t, err, ErrShutdown)

	snap := s.Snapshot()
	assert.True(t, snap.Shutdown)
	assert.Equal(t, uint64(50), snap.ActionCount, "shutdown key must not count")
	assert.Equal(t, uint64(50), snap.AvgActionCount)
}

func TestState_NoMutationAfterShutdown(t *testing.T) {
	s, in, tk := newEngine(t, DefaultConfig())
	in.Ingest(release(ports.KeyA))
	tk.Tick()
	in.Ingest(release(ports.KeyEnd))
	before := s.Snapshot()

	assert.ErrorIs(t, in.Ingest(release(ports.KeyA)), ErrShutdown)
	assert.ErrorIs(t, in.Ingest(click()), ErrShutdown)
	assert.ErrorIs(t, in.Ingest(ports.InputEvent{Kind: ports.KeyPress, Key: ports.KeyA}), ErrShutdown)
	assert.False(t, tk.Tick())
	assert.Equal(t, before, s.Snapshot())
}

func TestState_ShutdownKeyFromAnyState(t *testing.T) {
	// Fresh state, mid-window, and right after a close.
	for _, ticks := range []int{0, 3, 600} {
		s, in, tk := newEngine(t, DefaultConfig())
		for i := 0; i < ticks; i++ {
			tk.Tick()
		}
		before := s.Snapshot()
		assert.ErrorIs(t, in.Ingest(release(ports.KeyEnd)), ErrShutdown)
		after := s.Snapshot()
		assert.True(t, after.Shutdown)
		assert.Equal(t, before.ActionCount, after.ActionCount)
		assert.Equal(t, before.AvgActionCount, after.AvgActionCount)
	}
}

func TestState_RequestShutdownIdempotent(t *testing.T) {
	s := NewState(DefaultConfig())
	s.RequestShutdown()
	s.RequestShutdown()
	assert.True(t, s.IsShutdown())
}

func TestState_PressesIgnored(t *testing.T) {
	s, in, _ := newEngine(t, DefaultConfig())
	require.NoError(t, in.Ingest(ports.InputEvent{Kind: ports.KeyPress, Key: ports.KeyA}))
	require.NoError(t, in.Ingest(ports.InputEvent{Kind: ports.ButtonPress, Button: ports.ButtonLeft}))
	require.NoError(t, in.Ingest(ports.InputEvent{Kind: ports.KeyPress, Key: ports.KeyEnd}))

	snap := s.Snapshot()
	assert.Equal(t, uint64(0), snap.ActionCount)
	assert.False(t, snap.Shutdown, "pressing the shutdown key does nothing until release")
}

func TestState_LatchScreenAdjusted(t *testing.T) {
	s := NewState(DefaultConfig())
	assert.False(t, s.Snapshot().ScreenAdjusted)
	assert.True(t, s.LatchScreenAdjusted())
	assert.False(t, s.LatchScreenAdjusted())
	assert.True(t, s.Snapshot().ScreenAdjusted)
}

func TestState_ConcurrentIngestAndTick(t *testing.T) {
	cfg := Config{
		TickPeriod:       time.Millisecond,
		ShortWindowTicks: 7,
		LongWindowTicks:  13,
		ShutdownKey:      ports.KeyEnd,
	}
	s, in, tk := newEngine(t, cfg)

	const actions = 20000
	const ticks = 5000

	var shortTotal, longClosed uint64
	tk.OnWindowClose = func(window string, rate uint64) {
		if window == ShortWindow {
			shortTotal += rate
		} else {
			longClosed++
		}
	}

	var wg sync.WaitGroup
	var violations int
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < actions; i++ {
			in.Ingest(click())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < ticks; i++ {
			tk.Tick()
			snap := s.Snapshot()
			if snap.ElapsedTicks >= cfg.ShortWindowTicks || snap.AvgElapsedTicks >= cfg.LongWindowTicks {
				violations++
			}
		}
	}()
	wg.Wait()

	snap := s.Snapshot()
	assert.Zero(t, violations, "elapsed ticks exceeded a window bound")
	assert.Equal(t, uint64(actions), shortTotal+snap.ActionCount, "every action lands in exactly one short window")
	assert.Equal(t, uint64(ticks/13), longClosed)
	assert.Equal(t, uint64(ticks%7), snap.ElapsedTicks)
	assert.Equal(t, uint64(ticks%13), snap.AvgElapsedTicks)
}

func TestPerMinute_ZeroSpan(t *testing.T) {
	assert.Equal(t, uint64(0), perMinute(10, 0))
	assert.Equal(t, uint64(0), perMinute(0, time.Minute))
	assert.Equal(t, uint64(10), perMinute(10, time.Minute))
	assert.Equal(t, uint64(5), perMinute(10, 2*time.Minute))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.TickPeriod = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ShortWindowTicks = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LongWindowTicks = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ShutdownKey = ports.KeyUnknown
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LongWindowTicks = cfg.MaxWindowTicks()
	assert.NoError(t, cfg.Validate(), "largest representable window")
	cfg.LongWindowTicks++
	assert.Error(t, cfg.Validate(), "span would overflow time.Duration")

	cfg = DefaultConfig()
	cfg.ShortWindowTicks = math.MaxUint64
	assert.Error(t, cfg.Validate())

	assert.Equal(t, time.Minute, DefaultConfig().ShortWindow())
	assert.Equal(t, time.Hour, DefaultConfig().LongWindow())
}
