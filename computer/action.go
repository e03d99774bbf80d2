package computer

// ActionKind is the discriminant carried in the payload's "action" field
type ActionKind string

const (
	ActionScreenshot ActionKind = "screenshot"
	ActionMouseMove  ActionKind = "mouse_move"
	ActionMouseClick ActionKind = "mouse_click"
	ActionKeyPress   ActionKind = "key_press"
	ActionTypeText   ActionKind = "type_text"
	ActionScroll     ActionKind = "scroll"
)

// Action is one decoded request. The set of variants is closed: only the
// types in this file implement it.
type Action interface {
	Kind() ActionKind
	isAction()
}

// Screenshot captures the first screen
type Screenshot struct{}

// MouseMove moves the cursor to absolute coordinates
type MouseMove struct {
	X, Y int
}

// MouseClick clicks a button at the current cursor position
type MouseClick struct {
	Button string
	Double bool
}

// KeyPress presses a symbolic key such as "enter" or "pagedown"
type KeyPress struct {
	Key string
}

// TypeText types literal text
type TypeText struct {
	Text string
}

// Scroll scrolls vertically by Amount notches in Direction ("up" or "down")
type Scroll struct {
	Direction string
	Amount    int
}

func (Screenshot) Kind() ActionKind { return ActionScreenshot }
func (MouseMove) Kind() ActionKind  { return ActionMouseMove }
func (MouseClick) Kind() ActionKind { return ActionMouseClick }
func (KeyPress) Kind() ActionKind   { return ActionKeyPress }
func (TypeText) Kind() ActionKind   { return ActionTypeText }
func (Scroll) Kind() ActionKind     { return ActionScroll }

func (Screenshot) isAction() {}
func (MouseMove) isAction()  {}
func (MouseClick) isAction() {}
func (KeyPress) isAction()   {}
func (TypeText) isAction()   {}
func (Scroll) isAction()     {}
