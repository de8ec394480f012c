//go:build darwin || freebsd || linux || netbsd

package x11

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

// LibNames are tried in order when loading Xlib.
var LibNames = []string{"libX11.so.6", "libX11.so", "/opt/X11/lib/libX11.6.dylib"}

// xlib holds the resolved Xlib entry points. Loaded once per process.
type xlib struct {
	openDisplay       func(name string) uintptr
	closeDisplay      func(display uintptr) int32
	defaultRootWindow func(display uintptr) uintptr
	queryKeymap       func(display uintptr, keys *byte) int32
	queryPointer      func(display, window uintptr, root, child *uintptr, rootX, rootY, winX, winY *int32, mask *uint32) int32
	keysymToKeycode   func(display uintptr, keysym uint64) uint8
}

var (
	libOnce sync.Once
	lib     *xlib
	libErr  error
)

func loadXlib() (*xlib, error) {
	libOnce.Do(func() {
		var handle uintptr
		var err error
		for _, name := range LibNames {
			handle, err = purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
			if err == nil {
				break
			}
		}
		if handle == 0 {
			libErr = fmt.Errorf("%w: dlopen libX11: %v", ErrUnavailable, err)
			return
		}

		l := &xlib{}
		purego.RegisterLibFunc(&l.openDisplay, handle, "XOpenDisplay")
		purego.RegisterLibFunc(&l.closeDisplay, handle, "XCloseDisplay")
		purego.RegisterLibFunc(&l.defaultRootWindow, handle, "XDefaultRootWindow")
		purego.RegisterLibFunc(&l.queryKeymap, handle, "XQueryKeymap")
		purego.RegisterLibFunc(&l.queryPointer, handle, "XQueryPointer")
		purego.RegisterLibFunc(&l.keysymToKeycode, handle, "XKeysymToKeycode")
		lib = l
	})
	return lib, libErr
}

// display is an open Xlib connection. Not safe for concurrent use.
type display struct {
	lib  *xlib
	dpy  uintptr
	root uintptr
}

func dial(name string) (Conn, error) {
	l, err := loadXlib()
	if err != nil {
		return nil, err
	}
	dpy := l.openDisplay(name)
	if dpy == 0 {
		return nil, fmt.Errorf("%w: cannot open display %q", ErrUnavailable, name)
	}
	return &display{lib: l, dpy: dpy, root: l.defaultRootWindow(dpy)}, nil
}

func (d *display) QueryKeymap(k *Keymap) {
	d.lib.queryKeymap(d.dpy, &k[0])
}

func (d *display) QueryPointer() uint32 {
	var root, child uintptr
	var rx, ry, wx, wy int32
	var mask uint32
	if d.lib.queryPointer(d.dpy, d.root, &root, &child, &rx, &ry, &wx, &wy, &mask) == 0 {
		return 0
	}
	return mask
}

func (d *display) KeysymToKeycode(keysym uint64) uint8 {
	return d.lib.keysymToKeycode(d.dpy, keysym)
}

func (d *display) Close() error {
	if d.dpy != 0 {
		d.lib.closeDisplay(d.dpy)
		d.dpy = 0
	}
	return nil
}
