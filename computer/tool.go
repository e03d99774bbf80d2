package computer

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"deskctl/aitools"
)

const (
	DefaultName        = "computer_control"
	DefaultDescription = "Control computer with screenshot, mouse, and keyboard actions"

	// DefaultDoubleClickDelay separates the two clicks of a double-click
	DefaultDoubleClickDelay = 50 * time.Millisecond
)

// Options configures a Tool. Zero values select the defaults.
type Options struct {
	Name             string
	DoubleClickDelay time.Duration
	Encoder          Encoder
	Logger           hclog.Logger

	// Sleep waits between the clicks of a double-click. Tests replace it.
	Sleep func(time.Duration)
}

// Tool is the computer_control capability. It owns its backend exclusively
// and may be executed from many goroutines at once.
type Tool struct {
	name    string
	schema  aitools.Schema
	dev     *device
	encoder Encoder
	delay   atomic.Int64
	sleep   func(time.Duration)
	logger  hclog.Logger
	closer  io.Closer
}

var _ aitools.Tool = (*Tool)(nil)

// New creates a Tool over the given input and screen backends. If either
// backend implements io.Closer, Close releases it.
func New(input Input, screens Screens, opts Options) *Tool {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.DoubleClickDelay <= 0 {
		opts.DoubleClickDelay = DefaultDoubleClickDelay
	}
	if opts.Encoder == nil {
		opts.Encoder = PNGEncoder{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	t := &Tool{
		name:    opts.Name,
		schema:  Schema(),
		dev:     &device{input: input, screens: screens},
		encoder: opts.Encoder,
		sleep:   opts.Sleep,
		logger:  opts.Logger.Named(opts.Name),
	}
	t.delay.Store(int64(opts.DoubleClickDelay))
	if c, ok := input.(io.Closer); ok {
		t.closer = c
	} else if c, ok := screens.(io.Closer); ok {
		t.closer = c
	}
	return t
}

// NewWithBackend is New for a backend that provides both input and screens
func NewWithBackend(b Backend, opts Options) *Tool {
	return New(b, b, opts)
}

func (t *Tool) ToolName() string {
	return t.name
}

func (t *Tool) ToolDescription() string {
	return DefaultDescription
}

func (t *Tool) ToolPayloadSchema() aitools.Schema {
	return t.schema
}

// DoubleClickDelay returns the current gap between double-click clicks
func (t *Tool) DoubleClickDelay() time.Duration {
	return time.Duration(t.delay.Load())
}

// Configure applies runtime settings. Supported: double_click_delay.
func (t *Tool) Configure(settings map[string]string) error {
	if v, ok := settings["double_click_delay"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid double_click_delay '%s': %w", v, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid double_click_delay '%s': must be positive", v)
		}
		t.delay.Store(int64(d))
	}
	return nil
}

// Close releases the backend
func (t *Tool) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// Execute decodes the payload and dispatches it to exactly one handler
func (t *Tool) Execute(payload aitools.Payload) aitools.Result {
	action, err := Decode(payload)
	if err != nil {
		t.logger.Warn("rejected payload", "error", err)
		return aitools.Failed(err.Error())
	}

	switch a := action.(type) {
	case Screenshot:
		return t.screenshot()
	case MouseMove:
		return t.mouseMove(a)
	case MouseClick:
		return t.mouseClick(a)
	case KeyPress:
		return t.keyPress(a)
	case TypeText:
		return t.typeText(a)
	case Scroll:
		return t.scroll(a)
	default:
		panic(fmt.Sprintf("computer: no handler for action %T", action))
	}
}

func (t *Tool) screenshot() aitools.Result {
	t.logger.Info("taking screenshot")

	screens, err := t.dev.listScreens()
	if err != nil {
		return aitools.Failedf("Failed to list screens: %v", err)
	}
	if len(screens) == 0 {
		return aitools.Failed("No screens found")
	}

	img, err := t.dev.capture(screens[0])
	if err != nil {
		return aitools.Failedf("Failed to capture screen '%s': %v", screens[0].Name, err)
	}
	data, err := t.encoder.EncodePNG(img)
	if err != nil {
		return aitools.Failedf("Failed to encode screenshot: %v", err)
	}

	bounds := img.Bounds()
	return aitools.Succeeded(map[string]any{
		"screenshot": aitools.DataURI("image/png", data),
		"width":      bounds.Dx(),
		"height":     bounds.Dy(),
	})
}

func (t *Tool) mouseMove(a MouseMove) aitools.Result {
	t.logger.Info("moving mouse", "x", a.X, "y", a.Y)

	err := t.dev.do("move cursor", func(in Input) error {
		return in.MoveCursor(a.X, a.Y)
	})
	if err != nil {
		return aitools.Failedf("Failed to move mouse: %v", err)
	}
	return aitools.Succeeded(map[string]any{
		"moved_to": map[string]any{"x": a.X, "y": a.Y},
	})
}

func (t *Tool) mouseClick(a MouseClick) aitools.Result {
	button, ok := ParseButton(a.Button)
	if !ok {
		return aitools.Failedf("Unknown button: %s", a.Button)
	}
	t.logger.Info("clicking mouse button", "button", a.Button, "double", a.Double)

	// count is the click's ordinal so backends can report the second
	// click of a pair as a double-click
	click := func(count int) func(Input) error {
		return func(in Input) error { return in.Click(button, count) }
	}
	if err := t.dev.do("click", click(1)); err != nil {
		return aitools.Failedf("Failed to click: %v", err)
	}
	if a.Double {
		// the lock is released while waiting so other calls can proceed
		t.sleep(t.DoubleClickDelay())
		if err := t.dev.do("click", click(2)); err != nil {
			return aitools.Failedf("Failed to click: %v", err)
		}
	}
	return aitools.Succeeded(map[string]any{
		"clicked": a.Button,
		"double":  a.Double,
	})
}

func (t *Tool) keyPress(a KeyPress) aitools.Result {
	key, ok := LookupKey(a.Key)
	if !ok {
		return aitools.Failedf("Unknown key: %s", a.Key)
	}
	t.logger.Info("pressing key", "key", a.Key)

	err := t.dev.do("key event", func(in Input) error {
		return in.KeyEvent(key)
	})
	if err != nil {
		return aitools.Failedf("Failed to press key: %v", err)
	}
	return aitools.Succeeded(map[string]any{"key_pressed": a.Key})
}

func (t *Tool) typeText(a TypeText) aitools.Result {
	t.logger.Info("typing text", "length", len(a.Text))

	err := t.dev.do("type text", func(in Input) error {
		return in.TypeText(a.Text)
	})
	if err != nil {
		return aitools.Failedf("Failed to type text: %v", err)
	}
	return aitools.Succeeded(map[string]any{"typed": a.Text})
}

func (t *Tool) scroll(a Scroll) aitools.Result {
	var delta int
	switch a.Direction {
	case "up":
		delta = a.Amount
	case "down":
		delta = -a.Amount
	default:
		return aitools.Failedf("Unknown scroll direction: %s", a.Direction)
	}
	t.logger.Info("scrolling", "direction", a.Direction, "amount", a.Amount)

	err := t.dev.do("scroll", func(in Input) error {
		return in.Scroll(delta)
	})
	if err != nil {
		return aitools.Failedf("Failed to scroll: %v", err)
	}
	return aitools.Succeeded(map[string]any{
		"scrolled": map[string]any{"direction": a.Direction, "amount": a.Amount},
	})
}
