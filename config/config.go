package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"deskctl/plugin"
)

// toolNamePattern matches names a tool host can expose
var toolNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Config holds all configuration
type Config struct {
	Variables []Variable     `hcl:"variable,block"`
	Computer  ComputerConfig `hcl:"computer,block"`
	Backend   BackendConfig  `hcl:"backend,block"`
	Storage   StorageConfig  `hcl:"storage,block"`
	Server    ServerConfig   `hcl:"server,block"`
	Plugins   []Plugin       `hcl:"plugin,block"`

	// LoadedPlugins holds the loaded plugin clients, keyed by plugin name
	LoadedPlugins map[string]*plugin.PluginClient `hcl:"-"`
	// PluginWarnings holds warnings for plugins that could not be loaded
	PluginWarnings []string `hcl:"-"`
	// ResolvedVars holds the resolved variable values for runtime use
	ResolvedVars map[string]cty.Value `hcl:"-"`
}

// Default returns a configuration with every block at its defaults, used
// when no config path is given.
func Default() *Config {
	cfg := &Config{
		LoadedPlugins: make(map[string]*plugin.PluginClient),
		ResolvedVars:  make(map[string]cty.Value),
	}
	cfg.Defaults()
	return cfg
}

func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadAndValidate loads the config and validates all components
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		cfg.Close()
		return nil, err
	}

	return cfg, nil
}

// Defaults fills in defaults for every singleton block
func (c *Config) Defaults() {
	c.Computer.Defaults()
	c.Backend.Defaults()
	c.Storage.Defaults()
	c.Server.Defaults()
}

// Validate checks that all config components are valid
func (c *Config) Validate() error {
	for _, v := range c.Variables {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("variable '%s': %w", v.Name, err)
		}
	}

	if err := c.Computer.Validate(); err != nil {
		return err
	}
	if err := c.Backend.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, p := range c.Plugins {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("plugin '%s': %w", p.Name, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("plugin '%s': declared more than once", p.Name)
		}
		seen[p.Name] = true
	}

	return nil
}

// Close stops every loaded plugin process
func (c *Config) Close() {
	for name, client := range c.LoadedPlugins {
		client.Close()
		delete(c.LoadedPlugins, name)
	}
}

func LoadFile(filename string) (*Config, error) {
	return loadFromFiles([]string{filename})
}

func LoadDir(dir string) (*Config, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.hcl"))
	if err != nil {
		return nil, err
	}
	return loadFromFiles(files)
}

// singletonBlocks are the blocks that may appear at most once across all files
var singletonBlocks = []string{"computer", "backend", "storage", "server"}

// parsedBlocks holds all blocks extracted from a file in one pass
type parsedBlocks struct {
	Variables  []*hcl.Block
	Plugins    []*hcl.Block
	Singletons map[string]*hcl.Block
}

// loadFromFiles implements staged loading: variables → plugins → singleton blocks
func loadFromFiles(files []string) (*Config, error) {
	// Parse all files and extract all block types in a single pass
	parser := hclparse.NewParser()
	var allParsedBlocks []parsedBlocks
	singletons := make(map[string]*hcl.Block)

	schema := &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "variable", LabelNames: []string{"name"}},
			{Type: "plugin", LabelNames: []string{"name"}},
		},
	}
	for _, name := range singletonBlocks {
		schema.Blocks = append(schema.Blocks, hcl.BlockHeaderSchema{Type: name})
	}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parse %s: %w", file, diags)
		}

		content, diags := hclFile.Body.Content(schema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("read %s: %w", file, diags)
		}

		pb := parsedBlocks{Singletons: make(map[string]*hcl.Block)}
		for _, block := range content.Blocks {
			switch block.Type {
			case "variable":
				pb.Variables = append(pb.Variables, block)
			case "plugin":
				pb.Plugins = append(pb.Plugins, block)
			default:
				if prev, ok := singletons[block.Type]; ok {
					return nil, fmt.Errorf("%s: duplicate %s block (first defined at %s)", block.DefRange, block.Type, prev.DefRange)
				}
				singletons[block.Type] = block
				pb.Singletons[block.Type] = block
			}
		}
		allParsedBlocks = append(allParsedBlocks, pb)
	}

	// Stage 1: Load variables (no context needed)
	var allVars []Variable
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Variables {
			var v Variable
			v.Name = block.Labels[0]
			diags := gohcl.DecodeBody(block.Body, nil, &v)
			if diags.HasErrors() {
				return nil, fmt.Errorf("decode variable %s: %w", v.Name, diags)
			}
			allVars = append(allVars, v)
		}
	}

	varsCtx, resolvedVars := buildVarsContext(allVars)

	// Stage 2: Load plugins (with vars context). A plugin that fails to
	// start is a warning, not an error, so the built-in tool stays usable.
	var allPlugins []Plugin
	var pluginWarnings []string
	loadedPlugins := make(map[string]*plugin.PluginClient)

	for _, pb := range allParsedBlocks {
		for _, block := range pb.Plugins {
			p, err := parsePluginBlock(block, varsCtx)
			if err != nil {
				return nil, err
			}
			allPlugins = append(allPlugins, *p)
			if _, dup := loadedPlugins[p.Name]; dup {
				continue
			}

			client, err := plugin.LoadPlugin(p.Name, p.Version, p.Path)
			if err != nil {
				pluginWarnings = append(pluginWarnings, fmt.Sprintf("plugin '%s' (version %s): %v", p.Name, p.Version, err))
				continue
			}
			if len(p.Settings) > 0 {
				if err := client.Configure(p.Settings); err != nil {
					pluginWarnings = append(pluginWarnings, fmt.Sprintf("plugin '%s' configure: %v", p.Name, err))
					client.Close()
					continue
				}
			}
			loadedPlugins[p.Name] = client
		}
	}

	// Stage 3: Load singleton blocks (with vars context)
	cfg := &Config{
		Variables:      allVars,
		Plugins:        allPlugins,
		LoadedPlugins:  loadedPlugins,
		PluginWarnings: pluginWarnings,
		ResolvedVars:   resolvedVars,
	}
	targets := map[string]any{
		"computer": &cfg.Computer,
		"backend":  &cfg.Backend,
		"storage":  &cfg.Storage,
		"server":   &cfg.Server,
	}
	for _, name := range singletonBlocks {
		block, ok := singletons[name]
		if !ok {
			continue
		}
		if diags := gohcl.DecodeBody(block.Body, varsCtx, targets[name]); diags.HasErrors() {
			cfg.Close()
			return nil, fmt.Errorf("decode %s block: %w", name, diags)
		}
	}

	cfg.Defaults()
	return cfg, nil
}

func buildVarsContext(vars []Variable) (*hcl.EvalContext, map[string]cty.Value) {
	varsMap := make(map[string]cty.Value)
	fileVars, _ := LoadVarsFromFile()
	for _, v := range vars {
		if val, ok := fileVars[v.Name]; ok {
			varsMap[v.Name] = cty.StringVal(val)
		} else if v.Default != "" {
			varsMap[v.Name] = cty.StringVal(v.Default)
		} else {
			varsMap[v.Name] = cty.StringVal("")
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"vars": cty.ObjectVal(varsMap),
		},
	}, varsMap
}

func parsePluginBlock(block *hcl.Block, ctx *hcl.EvalContext) (*Plugin, error) {
	pluginName := block.Labels[0]

	pluginContent, diags := block.Body.Content(&hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "version", Required: true},
			{Name: "path"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "settings"},
		},
	})
	if diags.HasErrors() {
		return nil, fmt.Errorf("plugin '%s': %w", pluginName, diags)
	}

	versionVal, diags := pluginContent.Attributes["version"].Expr.Value(ctx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("plugin '%s': %w", pluginName, diags)
	}
	if versionVal.Type() != cty.String || versionVal.IsNull() {
		return nil, fmt.Errorf("plugin '%s': version must be a string", pluginName)
	}

	p := &Plugin{
		Name:     pluginName,
		Version:  versionVal.AsString(),
		Settings: make(map[string]string),
	}

	if pathAttr, ok := pluginContent.Attributes["path"]; ok {
		pathVal, diags := pathAttr.Expr.Value(ctx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("plugin '%s': %w", pluginName, diags)
		}
		if pathVal.Type() != cty.String || pathVal.IsNull() {
			return nil, fmt.Errorf("plugin '%s': path must be a string", pluginName)
		}
		p.Path = pathVal.AsString()
	}

	for _, settingsBlock := range pluginContent.Blocks {
		attrs, diags := settingsBlock.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("plugin '%s' settings: %w", pluginName, diags)
		}

		for name, attr := range attrs {
			val, diags := attr.Expr.Value(ctx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("plugin '%s' setting '%s': %w", pluginName, name, diags)
			}
			s, err := settingString(val)
			if err != nil {
				return nil, fmt.Errorf("plugin '%s' setting '%s': %w", pluginName, name, err)
			}
			p.Settings[name] = s
		}
	}

	return p, nil
}

// settingString converts a primitive settings value to its string form
func settingString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", nil
	}
	switch val.Type() {
	case cty.String:
		return val.AsString(), nil
	case cty.Bool:
		return fmt.Sprintf("%v", val.True()), nil
	case cty.Number:
		return val.AsBigFloat().Text('f', -1), nil
	default:
		return "", fmt.Errorf("unsupported type %s (expected string, number or bool)", val.Type().FriendlyName())
	}
}
