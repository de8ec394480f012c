package ports

import (
	"fmt"
	"strings"
)

// Key is a keyboard key from the fixed enumeration shared by every capture
// backend. Backends map their native codes onto it; anything else is KeyUnknown.
type Key int

const (
	KeyUnknown Key = iota

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeyEscape
	KeyTab
	KeyCapsLock
	KeySpace
	KeyEnter
	KeyBackspace
	KeyInsert
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPrintScreen
	KeyScrollLock
	KeyPause

	KeyLeftShift
	KeyRightShift
	KeyLeftCtrl
	KeyRightCtrl
	KeyLeftAlt
	KeyRightAlt
	KeyLeftMeta
	KeyRightMeta

	KeyMinus
	KeyEqual
	KeyLeftBracket
	KeyRightBracket
	KeySemicolon
	KeyApostrophe
	KeyGrave
	KeyBackslash
	KeyComma
	KeyDot
	KeySlash

	keyCount
)

var keyNames = [keyCount]string{
	KeyUnknown: "unknown",

	KeyA: "a", KeyB: "b", KeyC: "c", KeyD: "d", KeyE: "e", KeyF: "f", KeyG: "g",
	KeyH: "h", KeyI: "i", KeyJ: "j", KeyK: "k", KeyL: "l", KeyM: "m", KeyN: "n",
	KeyO: "o", KeyP: "p", KeyQ: "q", KeyR: "r", KeyS: "s", KeyT: "t", KeyU: "u",
	KeyV: "v", KeyW: "w", KeyX: "x", KeyY: "y", KeyZ: "z",

	Key0: "0", Key1: "1", Key2: "2", Key3: "3", Key4: "4",
	Key5: "5", Key6: "6", Key7: "7", Key8: "8", Key9: "9",

	KeyF1: "f1", KeyF2: "f2", KeyF3: "f3", KeyF4: "f4", KeyF5: "f5", KeyF6: "f6",
	KeyF7: "f7", KeyF8: "f8", KeyF9: "f9", KeyF10: "f10", KeyF11: "f11", KeyF12: "f12",

	KeyEscape:      "escape",
	KeyTab:         "tab",
	KeyCapsLock:    "capslock",
	KeySpace:       "space",
	KeyEnter:       "enter",
	KeyBackspace:   "backspace",
	KeyInsert:      "insert",
	KeyDelete:      "delete",
	KeyHome:        "home",
	KeyEnd:         "end",
	KeyPageUp:      "pageup",
	KeyPageDown:    "pagedown",
	KeyUp:          "up",
	KeyDown:        "down",
	KeyLeft:        "left",
	KeyRight:       "right",
	KeyPrintScreen: "printscreen",
	KeyScrollLock:  "scrolllock",
	KeyPause:       "pause",

	KeyLeftShift:  "leftshift",
	KeyRightShift: "rightshift",
	KeyLeftCtrl:   "leftctrl",
	KeyRightCtrl:  "rightctrl",
	KeyLeftAlt:    "leftalt",
	KeyRightAlt:   "rightalt",
	KeyLeftMeta:   "leftmeta",
	KeyRightMeta:  "rightmeta",

	KeyMinus:        "minus",
	KeyEqual:        "equal",
	KeyLeftBracket:  "leftbracket",
	KeyRightBracket: "rightbracket",
	KeySemicolon:    "semicolon",
	KeyApostrophe:   "apostrophe",
	KeyGrave:        "grave",
	KeyBackslash:    "backslash",
	KeyComma:        "comma",
	KeyDot:          "dot",
	KeySlash:        "slash",
}

// keyAliases accepts common alternative spellings in configuration.
var keyAliases = map[string]Key{
	"esc":       KeyEscape,
	"return":    KeyEnter,
	"del":       KeyDelete,
	"ins":       KeyInsert,
	"pgup":      KeyPageUp,
	"pgdn":      KeyPageDown,
	"page_up":   KeyPageUp,
	"page_down": KeyPageDown,
	"prtsc":     KeyPrintScreen,
	"period":    KeyDot,
}

// String returns the key's stable lower-case name.
func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return keyNames[KeyUnknown]
	}
	return keyNames[k]
}

// Valid reports whether k is a known, non-unknown key.
func (k Key) Valid() bool {
	return k > KeyUnknown && k < keyCount
}

// ParseKey resolves a key name (case-insensitive, aliases allowed).
func ParseKey(name string) (Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return KeyUnknown, fmt.Errorf("empty key name")
	}
	if k, ok := keyAliases[n]; ok {
		return k, nil
	}
	for k := KeyUnknown + 1; k < keyCount; k++ {
		if keyNames[k] == n {
			return k, nil
		}
	}
	return KeyUnknown, fmt.Errorf("unknown key %q", name)
}

// AllKeys returns every key of the enumeration except KeyUnknown, in order.
func AllKeys() []Key {
	keys := make([]Key, 0, keyCount-1)
	for k := KeyUnknown + 1; k < keyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}
