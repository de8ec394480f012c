// Package x11 captures global keyboard and pointer state from an X server by
// polling. libX11 is loaded at runtime with purego, so the binary carries no
// cgo dependency and runs on machines without X.
package x11

import (
	"time"

	"github.com/corey/apm/internal/ports"
)

// Keymap is the XQueryKeymap bit vector: bit n set means keycode n is down.
type Keymap [32]byte

// Down reports whether keycode is held.
func (k *Keymap) Down(keycode uint8) bool {
	return k[keycode/8]&(1<<(keycode%8)) != 0
}

// Set marks keycode as held.
func (k *Keymap) Set(keycode uint8) {
	k[keycode/8] |= 1 << (keycode % 8)
}

// Pointer button masks from X.h.
const (
	Button1Mask = 1 << 8
	Button2Mask = 1 << 9
	Button3Mask = 1 << 10
)

var buttonMasks = []struct {
	mask   uint32
	button ports.Button
}{
	{Button1Mask, ports.ButtonLeft},
	{Button2Mask, ports.ButtonMiddle},
	{Button3Mask, ports.ButtonRight},
}

// Snapshot is one poll of the input state.
type Snapshot struct {
	Keys    Keymap
	Buttons uint32 // XQueryPointer mask
}

// Diff returns the transitions between two polls. Keycodes missing from
// keycodes are reported as KeyUnknown with their raw code.
func Diff(prev, cur Snapshot, keycodes map[uint8]ports.Key, at time.Time) []ports.InputEvent {
	var events []ports.InputEvent
	for i := range cur.Keys {
		changed := prev.Keys[i] ^ cur.Keys[i]
		if changed == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if changed&(1<<bit) == 0 {
				continue
			}
			code := uint8(i*8 + bit)
			kind := ports.KeyRelease
			if cur.Keys.Down(code) {
				kind = ports.KeyPress
			}
			events = append(events, ports.InputEvent{
				Kind: kind,
				Key:  keycodes[code],
				Code: uint16(code),
				Time: at,
			})
		}
	}

	changed := prev.Buttons ^ cur.Buttons
	for _, b := range buttonMasks {
		if changed&b.mask == 0 {
			continue
		}
		kind := ports.ButtonRelease
		if cur.Buttons&b.mask != 0 {
			kind = ports.ButtonPress
		}
		events = append(events, ports.InputEvent{Kind: kind, Button: b.button, Time: at})
	}
	return events
}
