package rate

import "errors"

// ErrShutdown is returned by mutators once shutdown has been requested.
// Sources stop streaming when their emit callback returns it.
var ErrShutdown = errors.New("rate: shutdown requested")

// ErrCapture wraps failures of the underlying event source.
var ErrCapture = errors.New("rate: capture failed")
