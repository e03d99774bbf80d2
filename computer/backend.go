package computer

import (
	"bytes"
	"image"
	"image/png"
)

// Button is a mouse button understood by the input backend
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// Buttons lists the accepted button names in schema order
var Buttons = []Button{ButtonLeft, ButtonRight, ButtonMiddle}

// ParseButton maps a button name to a Button
func ParseButton(name string) (Button, bool) {
	for _, b := range Buttons {
		if string(b) == name {
			return b, true
		}
	}
	return "", false
}

// Input simulates OS input. Every call affects real input state and is
// issued under the tool's device lock, so implementations need not be
// safe for concurrent use.
type Input interface {
	MoveCursor(x, y int) error
	// Click presses and releases button. count is the click's ordinal in a
	// sequence, 2 for the second click of a double-click.
	Click(button Button, count int) error
	KeyEvent(key Key) error
	TypeText(text string) error
	// Scroll scrolls vertically; positive deltaY is up, negative is down.
	Scroll(deltaY int) error
}

// Screen identifies one capturable display
type Screen struct {
	ID   int
	Name string
}

// Screens enumerates and captures displays. Implementations must be safe
// for concurrent use; captures do not take the device lock.
type Screens interface {
	ListScreens() ([]Screen, error)
	Capture(screen Screen) (image.Image, error)
}

// Backend is a device that provides both input and screen capture
type Backend interface {
	Input
	Screens
}

// Encoder turns a captured image into bytes
type Encoder interface {
	EncodePNG(img image.Image) ([]byte, error)
}

// PNGEncoder is the default Encoder
type PNGEncoder struct {
	Compression png.CompressionLevel
}

func (e PNGEncoder) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: e.Compression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
