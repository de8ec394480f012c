package synthetic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corey/apm/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src ports.EventSource, ctx context.Context) ([]ports.InputEvent, error) {
	t.Helper()
	var got []ports.InputEvent
	err := src.Stream(ctx, func(ev ports.InputEvent) error {
		got = append(got, ev)
		return nil
	})
	return got, err
}

func releases(events []ports.InputEvent) int {
	n := 0
	for _, ev := range events {
		if ev.IsRelease() {
			n++
		}
	}
	return n
}

func TestTyping_Shape(t *testing.T) {
	s := Typing(8, ports.KeyEnd)
	require.Len(t, s, 18)

	assert.Equal(t, ports.KeyPress, s[0].Kind)
	assert.Equal(t, ports.KeyRelease, s[1].Kind)
	assert.Equal(t, ports.ButtonRelease, s[7].Kind, "every fourth action is a click")

	last := s[len(s)-1]
	assert.Equal(t, ports.KeyRelease, last.Kind)
	assert.Equal(t, ports.KeyEnd, last.Key)
}

func TestTyping_NoStopKey(t *testing.T) {
	s := Typing(3, ports.KeyUnknown)
	assert.Len(t, s, 6)
	assert.Equal(t, 3, releases(s))
}

func TestScript_StopsOnEmitError(t *testing.T) {
	stop := errors.New("stop")
	n := 0
	err := Typing(10, ports.KeyUnknown).Stream(context.Background(), func(ports.InputEvent) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, n)
}

func TestScript_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := collect(t, Typing(5, ports.KeyUnknown), ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
}

func TestMetronome_StopAfter(t *testing.T) {
	m := &Metronome{RatePerMinute: 60000, StopAfter: 5, StopKey: ports.KeyEnd} // 1ms apart
	got, err := collect(t, m, context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, releases(got), "five actions plus the stop key")
	last := got[len(got)-1]
	assert.Equal(t, ports.KeyEnd, last.Key)
	assert.False(t, last.Time.IsZero())
}

func TestMetronome_Cancelled(t *testing.T) {
	m := &Metronome{RatePerMinute: 1}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := collect(t, m, ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, got)
}

func TestMetronome_Interval(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, (&Metronome{RatePerMinute: 120}).Interval())
	assert.Equal(t, time.Minute, (&Metronome{}).Interval())
}
