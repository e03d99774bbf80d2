package backend

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/playwright-community/playwright-go"

	"deskctl/computer"
)

// wheelNotch is the pixel distance of one scroll notch
const wheelNotch = 100

// BrowserOptions configures the playwright backend
type BrowserOptions struct {
	Browser  string // "chromium", "firefox" or "webkit"
	Headless bool
	Endpoint string // connect to a running chromium instead of launching one
	URL      string
	Width    int
	Height   int
	Pages    int
}

// Browser drives a playwright-controlled browser. Each page is one screen;
// input always targets the first page.
type Browser struct {
	mu      sync.Mutex
	logger  hclog.Logger
	pw      *playwright.Playwright
	browser playwright.Browser
	pages   []playwright.Page
}

var _ computer.Backend = (*Browser)(nil)

// NewBrowser starts playwright, launches or connects to a browser and opens
// the configured pages.
func NewBrowser(opts BrowserOptions, logger hclog.Logger) (*Browser, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Pages < 1 {
		opts.Pages = 1
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	b := &Browser{logger: logger.Named("browser"), pw: pw}
	if err := b.open(opts); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Browser) open(opts BrowserOptions) error {
	var err error
	if opts.Endpoint != "" {
		b.browser, err = b.pw.Chromium.Connect(opts.Endpoint)
		if err != nil {
			return fmt.Errorf("could not connect to browser at %s: %w", opts.Endpoint, err)
		}
	} else {
		launchOpts := playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(opts.Headless),
		}
		switch opts.Browser {
		case "firefox":
			b.browser, err = b.pw.Firefox.Launch(launchOpts)
		case "webkit":
			b.browser, err = b.pw.WebKit.Launch(launchOpts)
		default:
			b.browser, err = b.pw.Chromium.Launch(launchOpts)
		}
		if err != nil {
			return fmt.Errorf("could not launch browser: %w", err)
		}
	}

	for i := 0; i < opts.Pages; i++ {
		page, err := b.browser.NewPage(playwright.BrowserNewPageOptions{
			Viewport: &playwright.Size{Width: opts.Width, Height: opts.Height},
		})
		if err != nil {
			return fmt.Errorf("could not create page: %w", err)
		}
		if opts.URL != "" {
			if _, err := page.Goto(opts.URL); err != nil {
				return fmt.Errorf("could not navigate to %s: %w", opts.URL, err)
			}
		}
		b.pages = append(b.pages, page)
	}

	b.logger.Info("browser ready", "browser", opts.Browser, "pages", len(b.pages), "remote", opts.Endpoint != "")
	return nil
}

func (b *Browser) active() (playwright.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pages) == 0 {
		return nil, fmt.Errorf("browser is closed")
	}
	return b.pages[0], nil
}

func (b *Browser) MoveCursor(x, y int) error {
	page, err := b.active()
	if err != nil {
		return err
	}
	return page.Mouse().Move(float64(x), float64(y))
}

func (b *Browser) Click(button computer.Button, count int) error {
	page, err := b.active()
	if err != nil {
		return err
	}
	mb, err := mouseButton(button)
	if err != nil {
		return err
	}
	mouse := page.Mouse()
	if err := mouse.Down(playwright.MouseDownOptions{Button: mb, ClickCount: playwright.Int(count)}); err != nil {
		return err
	}
	return mouse.Up(playwright.MouseUpOptions{Button: mb, ClickCount: playwright.Int(count)})
}

func (b *Browser) KeyEvent(key computer.Key) error {
	page, err := b.active()
	if err != nil {
		return err
	}
	name, err := browserKey(key)
	if err != nil {
		return err
	}
	return page.Keyboard().Press(name)
}

func (b *Browser) TypeText(text string) error {
	page, err := b.active()
	if err != nil {
		return err
	}
	return page.Keyboard().Type(text)
}

// Scroll converts the up-positive delta to the browser's down-positive wheel
func (b *Browser) Scroll(deltaY int) error {
	page, err := b.active()
	if err != nil {
		return err
	}
	return page.Mouse().Wheel(0, float64(-deltaY*wheelNotch))
}

func (b *Browser) ListScreens() ([]computer.Screen, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	screens := make([]computer.Screen, len(b.pages))
	for i, page := range b.pages {
		screens[i] = computer.Screen{ID: i, Name: page.URL()}
	}
	return screens, nil
}

func (b *Browser) Capture(s computer.Screen) (image.Image, error) {
	b.mu.Lock()
	if s.ID < 0 || s.ID >= len(b.pages) {
		b.mu.Unlock()
		return nil, fmt.Errorf("no such screen %d", s.ID)
	}
	page := b.pages[s.ID]
	b.mu.Unlock()

	data, err := page.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(data))
}

// Close closes the browser and stops playwright
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			firstErr = err
		}
		b.browser = nil
	}
	b.pages = nil
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		b.pw = nil
	}
	return firstErr
}

func mouseButton(button computer.Button) (*playwright.MouseButton, error) {
	switch button {
	case computer.ButtonLeft:
		return playwright.MouseButtonLeft, nil
	case computer.ButtonRight:
		return playwright.MouseButtonRight, nil
	case computer.ButtonMiddle:
		return playwright.MouseButtonMiddle, nil
	default:
		return nil, fmt.Errorf("unsupported button %q", button)
	}
}

// browserKeys maps key codes to playwright key names
var browserKeys = map[computer.Key]string{
	computer.KeyReturn:    "Enter",
	computer.KeyTab:       "Tab",
	computer.KeyEscape:    "Escape",
	computer.KeySpace:     "Space",
	computer.KeyBackspace: "Backspace",
	computer.KeyDelete:    "Delete",
	computer.KeyUp:        "ArrowUp",
	computer.KeyDown:      "ArrowDown",
	computer.KeyLeft:      "ArrowLeft",
	computer.KeyRight:     "ArrowRight",
	computer.KeyHome:      "Home",
	computer.KeyEnd:       "End",
	computer.KeyPageUp:    "PageUp",
	computer.KeyPageDown:  "PageDown",
}

func browserKey(key computer.Key) (string, error) {
	name, ok := browserKeys[key]
	if !ok {
		return "", fmt.Errorf("unsupported key %s", key)
	}
	return name, nil
}
