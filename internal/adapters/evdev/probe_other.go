//go:build !linux

package evdev

import "os"

const supported = false

func probeDevice(*os.File) (string, bool, error) {
	return "", false, ErrUnsupported
}
