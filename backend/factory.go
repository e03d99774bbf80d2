package backend

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"deskctl/computer"
	"deskctl/config"
)

// New creates the device backend selected by the configuration. The
// returned backend also implements io.Closer.
func New(cfg *config.BackendConfig, logger hclog.Logger) (computer.Backend, error) {
	if cfg == nil {
		cfg = &config.BackendConfig{}
		cfg.Defaults()
	}

	switch cfg.Type {
	case "dryrun":
		return NewDryRun(cfg.Width, cfg.Height, cfg.Screens, logger), nil

	case "browser":
		return NewBrowser(BrowserOptions{
			Browser:  cfg.Browser,
			Headless: cfg.IsHeadless(),
			Endpoint: cfg.Endpoint,
			URL:      cfg.URL,
			Width:    cfg.Width,
			Height:   cfg.Height,
			Pages:    cfg.Screens,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown backend type: %s (expected 'dryrun' or 'browser')", cfg.Type)
	}
}
