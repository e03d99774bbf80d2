package backend

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/hashicorp/go-hclog"

	"deskctl/computer"
)

// Event is one input primitive observed by the DryRun backend
type Event struct {
	Op     string
	X, Y   int
	Button computer.Button
	Count  int
	Key    computer.Key
	Length int
	Delta  int
}

// DryRun is a backend that performs no real input. It tracks the cursor,
// logs every primitive and serves blank screens of a fixed size.
type DryRun struct {
	mu      sync.Mutex
	logger  hclog.Logger
	width   int
	height  int
	screens int
	cursorX int
	cursorY int
	events  []Event
}

var _ computer.Backend = (*DryRun)(nil)

// NewDryRun creates a DryRun backend with the given number of screens
func NewDryRun(width, height, screens int, logger hclog.Logger) *DryRun {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &DryRun{
		logger:  logger.Named("dryrun"),
		width:   width,
		height:  height,
		screens: screens,
	}
}

func (d *DryRun) record(e Event) {
	d.mu.Lock()
	d.events = append(d.events, e)
	d.mu.Unlock()
}

func (d *DryRun) MoveCursor(x, y int) error {
	d.logger.Debug("move cursor", "x", x, "y", y)
	d.mu.Lock()
	d.cursorX, d.cursorY = x, y
	d.mu.Unlock()
	d.record(Event{Op: "move", X: x, Y: y})
	return nil
}

func (d *DryRun) Click(button computer.Button, count int) error {
	x, y := d.Cursor()
	d.logger.Debug("click", "button", button, "count", count, "x", x, "y", y)
	d.record(Event{Op: "click", X: x, Y: y, Button: button, Count: count})
	return nil
}

func (d *DryRun) KeyEvent(key computer.Key) error {
	d.logger.Debug("key event", "key", key)
	d.record(Event{Op: "key", Key: key})
	return nil
}

func (d *DryRun) TypeText(text string) error {
	d.logger.Debug("type text", "length", len(text))
	d.record(Event{Op: "type", Length: len(text)})
	return nil
}

func (d *DryRun) Scroll(deltaY int) error {
	d.logger.Debug("scroll", "delta", deltaY)
	d.record(Event{Op: "scroll", Delta: deltaY})
	return nil
}

func (d *DryRun) ListScreens() ([]computer.Screen, error) {
	screens := make([]computer.Screen, d.screens)
	for i := range screens {
		screens[i] = computer.Screen{ID: i, Name: fmt.Sprintf("dryrun-%d", i)}
	}
	return screens, nil
}

// Capture returns a blank frame with the cursor drawn as a small square
func (d *DryRun) Capture(s computer.Screen) (image.Image, error) {
	if s.ID < 0 || s.ID >= d.screens {
		return nil, fmt.Errorf("no such screen %d", s.ID)
	}
	img := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	x, y := d.Cursor()
	cursor := image.Rect(x-2, y-2, x+3, y+3).Intersect(img.Bounds())
	draw.Draw(img, cursor, &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	return img, nil
}

// Cursor returns the last position the cursor was moved to
func (d *DryRun) Cursor() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursorX, d.cursorY
}

// Events returns a copy of every primitive observed so far
func (d *DryRun) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

func (d *DryRun) Close() error {
	return nil
}
