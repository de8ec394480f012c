package ports

import "context"

// Snapshot is a point-in-time copy of the rate telemetry. Rates are in
// actions per minute.
type Snapshot struct {
	CurrentRate    uint64 // short-window rate (projected until the window closes)
	AverageRate    uint64 // long-window rate
	Shutdown       bool   // set once the session is ending; never reset
	ScreenAdjusted bool   // renderer placement latch

	// Raw counters, for diagnostics and tests.
	ActionCount     uint64
	ElapsedTicks    uint64
	AvgActionCount  uint64
	AvgElapsedTicks uint64
}

// TelemetryReader is the read side of the rate state handed to a renderer.
// Implementations take the state lock only for the duration of a copy.
type TelemetryReader interface {
	// Snapshot returns the current rates and shutdown flag.
	Snapshot() Snapshot

	// LatchScreenAdjusted records that the renderer has corrected its initial
	// placement. Returns true only on the first call.
	LatchScreenAdjusted() bool
}

// Renderer displays telemetry until the session ends. The concrete
// implementation (terminal overlay) lives in internal/adapters/terminal.
type Renderer interface {
	// Render polls reader on its own cadence and returns nil once
	// Snapshot().Shutdown is observed, the renderer's own exit key is
	// pressed, or ctx is cancelled. A non-nil error means the display failed.
	Render(ctx context.Context, reader TelemetryReader) error
}
