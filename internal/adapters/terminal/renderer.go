// Package terminal draws the rate overlay on a text terminal. It implements
// ports.Renderer by polling a TelemetryReader.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/corey/apm/internal/ports"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// DefaultWidth is assumed when the terminal size cannot be read.
const DefaultWidth = 80

// DefaultInterval is the overlay refresh cadence.
const DefaultInterval = 500 * time.Millisecond

// Exit keys read from stdin in raw mode.
const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// escapeDelay is how long a lone Esc waits for the rest of an escape
// sequence before it counts as a key press.
const escapeDelay = 50 * time.Millisecond

// Renderer implements ports.Renderer on a terminal line.
type Renderer struct {
	Out      io.Writer
	Interval time.Duration
	Color    bool
	Logger   *zap.Logger

	// In supplies exit keys. When it is a terminal it is switched to raw
	// mode for the life of Render. Nil disables exit keys.
	In *os.File

	// Width reports the terminal width. Defaults to term.GetSize on Out.
	Width func() (int, bool)
}

var _ ports.Renderer = (*Renderer)(nil)

// New creates a renderer on stdout with exit keys on stdin.
func New(interval time.Duration, color bool, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		Out:      os.Stdout,
		In:       os.Stdin,
		Interval: interval,
		Color:    color,
		Logger:   logger,
	}
}

// Format renders the overlay text for one snapshot.
func Format(s ports.Snapshot) string {
	return fmt.Sprintf("%d APM  %d avg", s.CurrentRate, s.AverageRate)
}

// Line places the overlay text right-aligned in a terminal of the given
// width. The last column is left empty so the cursor never wraps.
func Line(s ports.Snapshot, width int, color bool) string {
	label := Format(s)
	if color {
		label = text.Colors{text.FgGreen, text.Bold}.Sprint(label)
	}
	if width < 2 {
		return label
	}
	return text.AlignRight.Apply(label, width-1)
}

// Render draws until the reader reports shutdown, an exit key is pressed,
// or ctx is cancelled.
func (r *Renderer) Render(ctx context.Context, reader ports.TelemetryReader) error {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	width := DefaultWidth
	if w, ok := r.width(); ok {
		width = w
		if reader.LatchScreenAdjusted() {
			logger.Debug("overlay placed", zap.Int("width", width))
		}
	} else {
		logger.Debug("terminal size unavailable, using default width", zap.Int("width", width))
	}

	exit, restore := r.exitKeys(logger)
	defer restore()

	draw := func(s ports.Snapshot) {
		fmt.Fprintf(out, "\r%s\033[K", Line(s, width, r.Color))
	}
	defer fmt.Fprint(out, "\r\n")

	tk := time.NewTicker(interval)
	defer tk.Stop()

	for {
		snap := reader.Snapshot()
		draw(snap)
		if snap.Shutdown {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-exit:
			logger.Info("exit key pressed")
			return nil
		case <-tk.C:
		}
	}
}

func (r *Renderer) width() (int, bool) {
	if r.Width != nil {
		return r.Width()
	}
	f, ok := r.Out.(*os.File)
	if !ok {
		return 0, false
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 0, false
	}
	return w, true
}

// exitKeys watches In for q, a lone Esc or Ctrl-C. The reader goroutine
// stays blocked in Read after Render returns; the process is exiting by then.
func (r *Renderer) exitKeys(logger *zap.Logger) (<-chan struct{}, func()) {
	exit := make(chan struct{})
	if r.In == nil {
		return exit, func() {}
	}

	restore := func() {}
	fd := int(r.In.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			logger.Warn("raw mode unavailable, exit keys disabled", zap.Error(err))
			return exit, restore
		}
		restore = func() { _ = term.Restore(fd, old) }
	}

	go watchKeys(r.In, exit)
	return exit, restore
}

// watchKeys closes exit on the first exit key read from in. A trailing Esc
// followed by more input within escapeDelay is the start of a sequence.
func watchKeys(in io.Reader, exit chan<- struct{}) {
	chunks := make(chan []byte)
	go readChunks(in, chunks)

	for chunk := range chunks {
		hit, lone := ScanKeys(chunk)
		if lone {
			hit = escapeAlone(chunks)
		}
		if hit {
			close(exit)
			return
		}
	}
}

func readChunks(in io.Reader, chunks chan<- []byte) {
	defer close(chunks)
	buf := make([]byte, 16)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			chunks <- append([]byte(nil), buf[:n]...)
		}
		if err != nil {
			return
		}
	}
}

// escapeAlone reports whether a pending Esc stood alone: nothing else
// arrived within escapeDelay, or the input ended.
func escapeAlone(chunks <-chan []byte) bool {
	select {
	case _, ok := <-chunks:
		return !ok
	case <-time.After(escapeDelay):
		return true
	}
}

// ScanKeys inspects one read from a raw terminal. exit is set when the chunk
// holds q, Q or Ctrl-C ahead of any escape sequence. pendingEsc is set when
// the chunk ends in an Esc that may still be the start of a sequence. Bytes
// after an Esc belong to a sequence or an Alt chord and are ignored.
func ScanKeys(chunk []byte) (exit, pendingEsc bool) {
	for i, b := range chunk {
		if b == keyEscape {
			return false, i == len(chunk)-1
		}
		if IsExitKey(b) {
			return true, false
		}
	}
	return false, false
}

// IsExitKey reports whether b ends the overlay on its own. Esc is handled by
// ScanKeys since it also introduces escape sequences.
func IsExitKey(b byte) bool {
	return b == 'q' || b == 'Q' || b == keyCtrlC
}
