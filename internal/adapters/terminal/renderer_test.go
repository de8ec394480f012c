package terminal

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/corey/apm/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader reports shutdown after a fixed number of snapshots.
type fakeReader struct {
	mu        sync.Mutex
	snapshots int
	stopAfter int
	latched   bool
	latches   int
}

func (f *fakeReader) Snapshot() ports.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	return ports.Snapshot{
		CurrentRate:    uint64(100 + f.snapshots),
		AverageRate:    90,
		Shutdown:       f.stopAfter > 0 && f.snapshots >= f.stopAfter,
		ScreenAdjusted: f.latched,
	}
}

func (f *fakeReader) LatchScreenAdjusted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latches++
	if f.latched {
		return false
	}
	f.latched = true
	return true
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "120 APM  45 avg", Format(ports.Snapshot{CurrentRate: 120, AverageRate: 45}))
	assert.Equal(t, "0 APM  0 avg", Format(ports.Snapshot{}))
}

func TestLine_RightAligned(t *testing.T) {
	line := Line(ports.Snapshot{CurrentRate: 7, AverageRate: 3}, 30, false)
	assert.Len(t, line, 29)
	assert.True(t, strings.HasSuffix(line, "7 APM  3 avg"))
	assert.True(t, strings.HasPrefix(line, " "))
}

func TestLine_Color(t *testing.T) {
	line := Line(ports.Snapshot{CurrentRate: 7}, 40, true)
	assert.Contains(t, line, "\x1b[")
	assert.Contains(t, line, "7 APM  0 avg")
}

func TestRender_StopsOnShutdown(t *testing.T) {
	var out bytes.Buffer
	reader := &fakeReader{stopAfter: 3}
	r := &Renderer{
		Out:      &out,
		Interval: time.Millisecond,
		Width:    func() (int, bool) { return 60, true },
	}

	require.NoError(t, r.Render(context.Background(), reader))
	assert.Equal(t, 3, reader.snapshots)
	assert.True(t, reader.latched, "successful size read latches placement")
	assert.Equal(t, 1, reader.latches, "placement is computed once")
	assert.Contains(t, out.String(), "103 APM  90 avg")
	assert.True(t, strings.HasSuffix(out.String(), "\r\n"))
}

func TestRender_DefaultWidthDoesNotLatch(t *testing.T) {
	var out bytes.Buffer
	reader := &fakeReader{stopAfter: 1}
	r := &Renderer{Out: &out, Interval: time.Millisecond}

	require.NoError(t, r.Render(context.Background(), reader))
	assert.False(t, reader.latched)

	line := strings.TrimSuffix(strings.TrimPrefix(out.String(), "\r"), "\033[K\r\n")
	assert.Len(t, line, DefaultWidth-1)
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Renderer{Out: &bytes.Buffer{}, Interval: time.Hour}
	assert.NoError(t, r.Render(ctx, &fakeReader{}))
}

func startRender(t *testing.T) (*os.File, <-chan error) {
	t.Helper()
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		pr.Close()
		pw.Close()
	})

	r := &Renderer{Out: &bytes.Buffer{}, In: pr, Interval: time.Millisecond}
	done := make(chan error, 1)
	go func() { done <- r.Render(context.Background(), &fakeReader{}) }()
	return pw, done
}

func TestRender_ExitKey(t *testing.T) {
	pw, done := startRender(t)

	_, err := pw.Write([]byte("xq"))
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("renderer ignored exit key")
	}
}

func TestRender_EscapeSequencesDoNotExit(t *testing.T) {
	pw, done := startRender(t)

	for _, seq := range []string{"\x1b[A", "\x1bOF", "\x1bq", "\x1b[3~"} {
		_, err := pw.Write([]byte(seq))
		require.NoError(t, err)
		time.Sleep(2 * escapeDelay)
	}

	select {
	case <-done:
		t.Fatal("escape sequence ended the overlay")
	case <-time.After(100 * time.Millisecond):
	}

	_, err := pw.Write([]byte("q"))
	require.NoError(t, err)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("renderer ignored exit key")
	}
}

func TestRender_LoneEscapeExits(t *testing.T) {
	pw, done := startRender(t)

	_, err := pw.Write([]byte{keyEscape})
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("renderer ignored Esc")
	}
}

func TestScanKeys(t *testing.T) {
	tests := []struct {
		in         string
		exit, lone bool
	}{
		{"q", true, false},
		{"aQ", true, false},
		{"\x03", true, false},
		{"abc", false, false},
		{"\x1b", false, true},
		{"ab\x1b", false, true},
		{"\x1b[A", false, false},
		{"\x1bOF", false, false},
		{"\x1bq", false, false},
		{"\x1b[Aq", false, false},
	}
	for _, tt := range tests {
		exit, lone := ScanKeys([]byte(tt.in))
		assert.Equal(t, tt.exit, exit, "%q exit", tt.in)
		assert.Equal(t, tt.lone, lone, "%q lone", tt.in)
	}
}

func TestIsExitKey(t *testing.T) {
	for _, b := range []byte{'q', 'Q', 0x03} {
		assert.True(t, IsExitKey(b), "%q", b)
	}
	for _, b := range []byte{'a', ' ', '\r', 'e', 0x1b} {
		assert.False(t, IsExitKey(b), "%q", b)
	}
}
