package ports

import (
	"context"
	"time"
)

// =============================================================================
// Input Event Port: Backend-Agnostic Capture Model
//
// This defines what a captured input event IS, regardless of which capture
// backend produced it (evdev, X11, synthetic). Adapters translate
// backend-specific records into this canonical representation.
// =============================================================================

// EventSource is the port for consuming global input events.
// Each capture backend gets its own adapter that implements this interface.
type EventSource interface {
	// Stream delivers events to emit until ctx is cancelled, the backend
	// fails, or emit returns an error. An emit error stops the stream and is
	// returned unchanged so callers can match it with errors.Is.
	// There is no backpressure: emit is called as events arrive.
	Stream(ctx context.Context, emit func(InputEvent) error) error

	// Name identifies the backend in logs and diagnostics ("evdev", "x11").
	Name() string
}

// EventSourceFunc adapts a function literal to the EventSource interface.
type EventSourceFunc func(ctx context.Context, emit func(InputEvent) error) error

// Stream calls the underlying function.
func (f EventSourceFunc) Stream(ctx context.Context, emit func(InputEvent) error) error {
	return f(ctx, emit)
}

// Name returns "func".
func (f EventSourceFunc) Name() string { return "func" }

// InputEvent is one discrete press or release delivered by a capture backend.
type InputEvent struct {
	// Kind identifies what happened. Every event is exactly one kind.
	Kind EventKind

	// Key is set for KeyPress and KeyRelease. Keys outside the fixed
	// enumeration are reported as KeyUnknown with the raw code in Code.
	Key Key

	// Button is set for ButtonPress and ButtonRelease.
	Button Button

	// Code is the backend's raw key/button code (evdev code, X11 keycode).
	// Zero when the backend has none (synthetic sources).
	Code uint16

	// Time is when the backend observed the event. Zero if unknown.
	Time time.Time
}

// IsRelease reports whether the event is a key or button release.
func (e InputEvent) IsRelease() bool {
	return e.Kind == KeyRelease || e.Kind == ButtonRelease
}

// EventKind classifies an InputEvent.
type EventKind int

const (
	// KeyPress is a keyboard key going down.
	KeyPress EventKind = iota

	// KeyRelease is a keyboard key coming up.
	KeyRelease

	// ButtonPress is a pointer button going down.
	ButtonPress

	// ButtonRelease is a pointer button coming up.
	ButtonRelease
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case KeyPress:
		return "key_press"
	case KeyRelease:
		return "key_release"
	case ButtonPress:
		return "button_press"
	case ButtonRelease:
		return "button_release"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonUnknown Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
	ButtonSide
	ButtonExtra
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	case ButtonSide:
		return "side"
	case ButtonExtra:
		return "extra"
	default:
		return "unknown"
	}
}
