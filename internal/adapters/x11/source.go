package x11

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/corey/apm/internal/ports"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often the keymap and pointer are sampled.
const DefaultPollInterval = 10 * time.Millisecond

// ErrUnavailable means libX11 could not be loaded or the display could not
// be opened.
var ErrUnavailable = errors.New("x11: display unavailable")

// Conn is the slice of Xlib the poller needs.
type Conn interface {
	QueryKeymap(*Keymap)
	QueryPointer() uint32
	KeysymToKeycode(keysym uint64) uint8
	Close() error
}

// Source implements ports.EventSource by polling an X display.
type Source struct {
	// Display names the X display; empty uses $DISPLAY.
	Display      string
	PollInterval time.Duration
	Logger       *zap.Logger

	// Dial opens the display. Defaults to libX11 through purego.
	Dial func(display string) (Conn, error)

	// Clock stamps events; defaults to time.Now.
	Clock func() time.Time
}

var _ ports.EventSource = (*Source)(nil)

// New creates a Source polling at interval.
func New(display string, interval time.Duration, logger *zap.Logger) *Source {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{Display: display, PollInterval: interval, Logger: logger, Dial: dial}
}

// Name returns "x11".
func (s *Source) Name() string { return "x11" }

// Probe opens and closes the display.
func (s *Source) Probe() error {
	c, err := s.connect()
	if err != nil {
		return err
	}
	return c.Close()
}

func (s *Source) connect() (Conn, error) {
	display := s.Display
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	if display == "" {
		return nil, fmt.Errorf("%w: DISPLAY is not set", ErrUnavailable)
	}
	d := s.Dial
	if d == nil {
		d = dial
	}
	c, err := d(display)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return c, nil
}

// Stream polls until ctx is cancelled or emit fails. The first poll is the
// baseline; keys already held when streaming starts produce no press.
func (s *Source) Stream(ctx context.Context, emit func(ports.InputEvent) error) error {
	c, err := s.connect()
	if err != nil {
		return err
	}
	defer c.Close()

	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	keycodes := keycodeTable(c.KeysymToKeycode)
	logger.Info("x11 display opened", zap.Int("mapped_keys", len(keycodes)), zap.Duration("poll", interval))

	var prev Snapshot
	c.QueryKeymap(&prev.Keys)
	prev.Buttons = c.QueryPointer()

	tk := time.NewTicker(interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
		}

		var cur Snapshot
		c.QueryKeymap(&cur.Keys)
		cur.Buttons = c.QueryPointer()

		for _, ev := range Diff(prev, cur, keycodes, clock()) {
			if err := emit(ev); err != nil {
				return err
			}
		}
		prev = cur
	}
}
