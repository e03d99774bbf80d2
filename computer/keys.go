package computer

import "strings"

// Key is a backend key code for a non-printing key
type Key int

const (
	KeyReturn Key = iota + 1
	KeyTab
	KeyEscape
	KeySpace
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

var keyNames = map[Key]string{
	KeyReturn:    "Return",
	KeyTab:       "Tab",
	KeyEscape:    "Escape",
	KeySpace:     "Space",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Key(?)"
}

// symbolicKeys maps lowercase symbolic names to key codes
var symbolicKeys = map[string]Key{
	"enter":      KeyReturn,
	"return":     KeyReturn,
	"tab":        KeyTab,
	"escape":     KeyEscape,
	"esc":        KeyEscape,
	"space":      KeySpace,
	"backspace":  KeyBackspace,
	"delete":     KeyDelete,
	"up":         KeyUp,
	"arrowup":    KeyUp,
	"down":       KeyDown,
	"arrowdown":  KeyDown,
	"left":       KeyLeft,
	"arrowleft":  KeyLeft,
	"right":      KeyRight,
	"arrowright": KeyRight,
	"home":       KeyHome,
	"end":        KeyEnd,
	"pageup":     KeyPageUp,
	"page_up":    KeyPageUp,
	"pgup":       KeyPageUp,
	"pagedown":   KeyPageDown,
	"page_down":  KeyPageDown,
	"pgdn":       KeyPageDown,
}

// LookupKey resolves a symbolic key name, ignoring case
func LookupKey(name string) (Key, bool) {
	k, ok := symbolicKeys[strings.ToLower(name)]
	return k, ok
}
