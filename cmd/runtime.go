package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"deskctl/backend"
	"deskctl/computer"
	"deskctl/config"
	"deskctl/registry"
	"deskctl/store"
)

// runtime is everything a command needs to execute tools
type runtime struct {
	cfg     *config.Config
	reg     *registry.Registry
	journal store.Journal
	logger  hclog.Logger
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newRuntime loads the config, opens the journal and backend, and
// registers the computer tool followed by every plugin tool.
func newRuntime(logger hclog.Logger) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.PluginWarnings {
		logger.Warn(w)
	}

	journal, err := store.NewJournal(&cfg.Storage)
	if err != nil {
		cfg.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}

	rt := &runtime{
		cfg:     cfg,
		journal: journal,
		logger:  logger,
		reg:     registry.New(registry.Options{Logger: logger, Recorder: journal}),
	}

	b, err := backend.New(&cfg.Backend, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open backend: %w", err)
	}
	tool := computer.NewWithBackend(b, computer.Options{
		Name:             cfg.Computer.Name,
		DoubleClickDelay: cfg.Computer.Delay(),
		Logger:           logger,
	})
	if err := rt.reg.Register(tool); err != nil {
		tool.Close()
		rt.Close()
		return nil, err
	}

	if err := rt.registerPlugins(); err != nil {
		rt.Close()
		return nil, err
	}
	logger.Debug("runtime ready", "tools", rt.reg.Names(), "backend", cfg.Backend.Type, "storage", cfg.Storage.Backend)
	return rt, nil
}

func (rt *runtime) registerPlugins() error {
	names := make([]string, 0, len(rt.cfg.LoadedPlugins))
	for name := range rt.cfg.LoadedPlugins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tools, err := rt.cfg.LoadedPlugins[name].GetAllTools()
		if err != nil {
			rt.logger.Warn("plugin tools unavailable", "plugin", name, "error", err)
			continue
		}
		for _, t := range tools {
			if err := rt.reg.Register(t); err != nil {
				return fmt.Errorf("plugin '%s': register %s: %w", name, t.ToolName(), err)
			}
		}
	}
	return nil
}

// Close releases tools, the journal and plugin processes
func (rt *runtime) Close() error {
	err := errors.Join(rt.reg.Close(), rt.journal.Close())
	rt.cfg.Close()
	return err
}
