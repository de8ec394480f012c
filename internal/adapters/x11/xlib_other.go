//go:build !(darwin || freebsd || linux || netbsd)

package x11

import "fmt"

func dial(string) (Conn, error) {
	return nil, fmt.Errorf("%w: Xlib cannot be loaded on this platform", ErrUnavailable)
}
