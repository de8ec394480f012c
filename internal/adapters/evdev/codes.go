package evdev

import "github.com/corey/apm/internal/ports"

// Event types and values from linux/input-event-codes.h.
const (
	evKey = 0x01

	valueRelease = 0
	valuePress   = 1
	valueRepeat  = 2
)

// Button and digitizer code ranges.
const (
	btnMouseFirst = 0x110
	btnMouseLast  = 0x117
	btnDigiFirst  = 0x140
	btnDigiLast   = 0x14f
)

var buttonCodes = map[uint16]ports.Button{
	0x110: ports.ButtonLeft,
	0x111: ports.ButtonRight,
	0x112: ports.ButtonMiddle,
	0x113: ports.ButtonSide,
	0x114: ports.ButtonExtra,
}

var keyCodes = map[uint16]ports.Key{
	1:   ports.KeyEscape,
	2:   ports.Key1,
	3:   ports.Key2,
	4:   ports.Key3,
	5:   ports.Key4,
	6:   ports.Key5,
	7:   ports.Key6,
	8:   ports.Key7,
	9:   ports.Key8,
	10:  ports.Key9,
	11:  ports.Key0,
	12:  ports.KeyMinus,
	13:  ports.KeyEqual,
	14:  ports.KeyBackspace,
	15:  ports.KeyTab,
	16:  ports.KeyQ,
	17:  ports.KeyW,
	18:  ports.KeyE,
	19:  ports.KeyR,
	20:  ports.KeyT,
	21:  ports.KeyY,
	22:  ports.KeyU,
	23:  ports.KeyI,
	24:  ports.KeyO,
	25:  ports.KeyP,
	26:  ports.KeyLeftBracket,
	27:  ports.KeyRightBracket,
	28:  ports.KeyEnter,
	29:  ports.KeyLeftCtrl,
	30:  ports.KeyA,
	31:  ports.KeyS,
	32:  ports.KeyD,
	33:  ports.KeyF,
	34:  ports.KeyG,
	35:  ports.KeyH,
	36:  ports.KeyJ,
	37:  ports.KeyK,
	38:  ports.KeyL,
	39:  ports.KeySemicolon,
	40:  ports.KeyApostrophe,
	41:  ports.KeyGrave,
	42:  ports.KeyLeftShift,
	43:  ports.KeyBackslash,
	44:  ports.KeyZ,
	45:  ports.KeyX,
	46:  ports.KeyC,
	47:  ports.KeyV,
	48:  ports.KeyB,
	49:  ports.KeyN,
	50:  ports.KeyM,
	51:  ports.KeyComma,
	52:  ports.KeyDot,
	53:  ports.KeySlash,
	54:  ports.KeyRightShift,
	56:  ports.KeyLeftAlt,
	57:  ports.KeySpace,
	58:  ports.KeyCapsLock,
	59:  ports.KeyF1,
	60:  ports.KeyF2,
	61:  ports.KeyF3,
	62:  ports.KeyF4,
	63:  ports.KeyF5,
	64:  ports.KeyF6,
	65:  ports.KeyF7,
	66:  ports.KeyF8,
	67:  ports.KeyF9,
	68:  ports.KeyF10,
	70:  ports.KeyScrollLock,
	87:  ports.KeyF11,
	88:  ports.KeyF12,
	96:  ports.KeyEnter, // keypad enter
	97:  ports.KeyRightCtrl,
	99:  ports.KeyPrintScreen,
	100: ports.KeyRightAlt,
	102: ports.KeyHome,
	103: ports.KeyUp,
	104: ports.KeyPageUp,
	105: ports.KeyLeft,
	106: ports.KeyRight,
	107: ports.KeyEnd,
	108: ports.KeyDown,
	109: ports.KeyPageDown,
	110: ports.KeyInsert,
	111: ports.KeyDelete,
	119: ports.KeyPause,
	125: ports.KeyLeftMeta,
	126: ports.KeyRightMeta,
}

// KeyCode returns the evdev code for k, or false if k has none.
func KeyCode(k ports.Key) (uint16, bool) {
	for code, key := range keyCodes {
		if key == k && code != 96 {
			return code, true
		}
	}
	return 0, false
}

// Translate maps one raw record to a canonical event. It returns false for
// records that are not key or button transitions: sync reports, relative
// motion, autorepeat and digitizer tool codes.
func Translate(r Record) (ports.InputEvent, bool) {
	if r.Type != evKey {
		return ports.InputEvent{}, false
	}
	if r.Value != valuePress && r.Value != valueRelease {
		return ports.InputEvent{}, false
	}
	if r.Code >= btnDigiFirst && r.Code <= btnDigiLast {
		return ports.InputEvent{}, false
	}

	ev := ports.InputEvent{Code: r.Code, Time: r.Time()}
	press := r.Value == valuePress

	if r.Code >= btnMouseFirst && r.Code <= btnMouseLast {
		ev.Button = buttonCodes[r.Code]
		if press {
			ev.Kind = ports.ButtonPress
		} else {
			ev.Kind = ports.ButtonRelease
		}
		return ev, true
	}

	ev.Key = keyCodes[r.Code]
	if press {
		ev.Kind = ports.KeyPress
	} else {
		ev.Kind = ports.KeyRelease
	}
	return ev, true
}
