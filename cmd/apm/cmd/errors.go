package cmd

import (
	"errors"
	"io/fs"

	"github.com/corey/apm/internal/adapters/evdev"
	"github.com/corey/apm/internal/adapters/x11"
)

// diagnoseCaptureError returns actionable guidance for a capture backend
// failure, or "" when there is nothing useful to add. It distinguishes
// missing permissions on the device nodes, no devices at all, and a
// missing X display.
func diagnoseCaptureError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, fs.ErrPermission):
		return "input devices are not readable by this user\n" +
			"  → add yourself to the input group:  sudo usermod -aG input $USER\n" +
			"  → then log out and back in"
	case errors.Is(err, evdev.ErrNoDevices):
		return "no keyboard or mouse event devices were found\n" +
			"  → check:  ls -l /dev/input/event*\n" +
			"  → or use X11 capture:  apm run --source x11"
	case errors.Is(err, evdev.ErrUnsupported):
		return "evdev capture needs Linux\n" +
			"  → try:  apm run --source x11"
	case errors.Is(err, x11.ErrUnavailable):
		return "no X display is reachable\n" +
			"  → run inside an X session or set DISPLAY\n" +
			"  → libX11 must be installed (libX11.so.6)"
	default:
		return ""
	}
}
