package render

import "strings"

// Key represents a keyboard key.
type Key int

// Key constants for the keys the engine can bind
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
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyEnter
	KeyTab
	KeyEscape

	keyCount
)

var keyNames = map[string]Key{
	"arrowup":    KeyUp,
	"up":         KeyUp,
	"arrowdown":  KeyDown,
	"down":       KeyDown,
	"arrowleft":  KeyLeft,
	"left":       KeyLeft,
	"arrowright": KeyRight,
	"right":      KeyRight,
	"space":      KeySpace,
	"enter":      KeyEnter,
	"return":     KeyEnter,
	"tab":        KeyTab,
	"escape":     KeyEscape,
	"esc":        KeyEscape,
}

// ParseKey resolves a key name such as "W", "ArrowUp" or "Escape".
// Names are case-insensitive.
func ParseKey(name string) (Key, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if len(n) == 1 && n[0] >= 'a' && n[0] <= 'z' {
		return KeyA + Key(n[0]-'a'), true
	}
	k, ok := keyNames[n]
	return k, ok
}

// AllKeys returns every bindable key.
func AllKeys() []Key {
	keys := make([]Key, 0, int(keyCount)-1)
	for k := KeyA; k < keyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}
