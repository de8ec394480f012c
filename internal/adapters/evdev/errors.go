package evdev

import "errors"

var (
	// ErrNoDevices means no readable event node advertising key events was found.
	ErrNoDevices = errors.New("evdev: no readable input devices")

	// ErrUnsupported is returned on platforms without evdev.
	ErrUnsupported = errors.New("evdev: not supported on this platform")
)
