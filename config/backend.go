package config

import "fmt"

// BackendConfig selects and tunes the device backend behind the computer tool
type BackendConfig struct {
	Type     string `hcl:"type,optional"`     // "dryrun" or "browser"
	Width    int    `hcl:"width,optional"`    // screen width in pixels
	Height   int    `hcl:"height,optional"`   // screen height in pixels
	Screens  int    `hcl:"screens,optional"`  // number of screens (pages for the browser backend)
	Browser  string `hcl:"browser,optional"`  // "chromium", "firefox" or "webkit"
	Headless *bool  `hcl:"headless,optional"` // browser only, default true
	Endpoint string `hcl:"endpoint,optional"` // connect to a remote browser instead of launching one
	URL      string `hcl:"url,optional"`      // page loaded into every screen at startup
}

// Defaults fills in default values for unset fields
func (b *BackendConfig) Defaults() {
	if b.Type == "" {
		b.Type = "dryrun"
	}
	if b.Width == 0 {
		b.Width = 1280
	}
	if b.Height == 0 {
		b.Height = 800
	}
	if b.Screens == 0 {
		b.Screens = 1
	}
	if b.Browser == "" {
		b.Browser = "chromium"
	}
	if b.Headless == nil {
		headless := true
		b.Headless = &headless
	}
}

// Validate checks the backend block after defaults are applied
func (b *BackendConfig) Validate() error {
	switch b.Type {
	case "dryrun", "browser":
	default:
		return fmt.Errorf("backend: unknown type '%s' (expected 'dryrun' or 'browser')", b.Type)
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("backend: width and height must be positive, got %dx%d", b.Width, b.Height)
	}
	if b.Screens < 0 {
		return fmt.Errorf("backend: screens must not be negative, got %d", b.Screens)
	}
	switch b.Browser {
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("backend: invalid browser '%s': must be 'chromium', 'firefox', or 'webkit'", b.Browser)
	}
	if b.Endpoint != "" && b.Browser != "chromium" {
		return fmt.Errorf("backend: endpoint is only supported for the chromium browser")
	}
	return nil
}

// IsHeadless reports the effective headless setting
func (b *BackendConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}
