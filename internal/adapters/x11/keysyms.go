package x11

import "github.com/corey/apm/internal/ports"

// keysyms maps each enumerated key to its X keysym (keysymdef.h).
var keysyms = map[ports.Key]uint64{
	ports.KeyA: 0x61, ports.KeyB: 0x62, ports.KeyC: 0x63, ports.KeyD: 0x64,
	ports.KeyE: 0x65, ports.KeyF: 0x66, ports.KeyG: 0x67, ports.KeyH: 0x68,
	ports.KeyI: 0x69, ports.KeyJ: 0x6a, ports.KeyK: 0x6b, ports.KeyL: 0x6c,
	ports.KeyM: 0x6d, ports.KeyN: 0x6e, ports.KeyO: 0x6f, ports.KeyP: 0x70,
	ports.KeyQ: 0x71, ports.KeyR: 0x72, ports.KeyS: 0x73, ports.KeyT: 0x74,
	ports.KeyU: 0x75, ports.KeyV: 0x76, ports.KeyW: 0x77, ports.KeyX: 0x78,
	ports.KeyY: 0x79, ports.KeyZ: 0x7a,

	ports.Key0: 0x30, ports.Key1: 0x31, ports.Key2: 0x32, ports.Key3: 0x33, ports.Key4: 0x34,
	ports.Key5: 0x35, ports.Key6: 0x36, ports.Key7: 0x37, ports.Key8: 0x38, ports.Key9: 0x39,

	ports.KeyF1: 0xffbe, ports.KeyF2: 0xffbf, ports.KeyF3: 0xffc0, ports.KeyF4: 0xffc1,
	ports.KeyF5: 0xffc2, ports.KeyF6: 0xffc3, ports.KeyF7: 0xffc4, ports.KeyF8: 0xffc5,
	ports.KeyF9: 0xffc6, ports.KeyF10: 0xffc7, ports.KeyF11: 0xffc8, ports.KeyF12: 0xffc9,

	ports.KeyEscape:      0xff1b,
	ports.KeyTab:         0xff09,
	ports.KeyCapsLock:    0xffe5,
	ports.KeySpace:       0x20,
	ports.KeyEnter:       0xff0d,
	ports.KeyBackspace:   0xff08,
	ports.KeyInsert:      0xff63,
	ports.KeyDelete:      0xffff,
	ports.KeyHome:        0xff50,
	ports.KeyEnd:         0xff57,
	ports.KeyPageUp:      0xff55,
	ports.KeyPageDown:    0xff56,
	ports.KeyUp:          0xff52,
	ports.KeyDown:        0xff54,
	ports.KeyLeft:        0xff51,
	ports.KeyRight:       0xff53,
	ports.KeyPrintScreen: 0xff61,
	ports.KeyScrollLock:  0xff14,
	ports.KeyPause:       0xff13,

	ports.KeyLeftShift:  0xffe1,
	ports.KeyRightShift: 0xffe2,
	ports.KeyLeftCtrl:   0xffe3,
	ports.KeyRightCtrl:  0xffe4,
	ports.KeyLeftAlt:    0xffe9,
	ports.KeyRightAlt:   0xffea,
	ports.KeyLeftMeta:   0xffeb,
	ports.KeyRightMeta:  0xffec,

	ports.KeyMinus:        0x2d,
	ports.KeyEqual:        0x3d,
	ports.KeyLeftBracket:  0x5b,
	ports.KeyRightBracket: 0x5d,
	ports.KeySemicolon:    0x3b,
	ports.KeyApostrophe:   0x27,
	ports.KeyGrave:        0x60,
	ports.KeyBackslash:    0x5c,
	ports.KeyComma:        0x2c,
	ports.KeyDot:          0x2e,
	ports.KeySlash:        0x2f,
}

// Keysym returns the X keysym for k.
func Keysym(k ports.Key) (uint64, bool) {
	sym, ok := keysyms[k]
	return sym, ok
}

// keycodeTable resolves every enumerated key to the server's keycode.
// Keys the keyboard mapping lacks are left out.
func keycodeTable(resolve func(keysym uint64) uint8) map[uint8]ports.Key {
	table := make(map[uint8]ports.Key, len(keysyms))
	for _, k := range ports.AllKeys() {
		sym, ok := keysyms[k]
		if !ok {
			continue
		}
		if kc := resolve(sym); kc != 0 {
			if _, taken := table[kc]; !taken {
				table[kc] = k
			}
		}
	}
	return table
}
