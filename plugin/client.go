package plugin

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"deskctl/aitools"
)

// PluginClient wraps a go-plugin client and provides access to the tool plugin
type PluginClient struct {
	client   *goplugin.Client
	provider ToolProvider
	name     string
}

// GetPluginsDir returns the base directory for plugins
func GetPluginsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".deskctl", "plugins"), nil
}

// GetPluginPath returns the default path to a plugin executable
func GetPluginPath(name, version string) (string, error) {
	pluginsDir, err := GetPluginsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(pluginsDir, name, version, "plugin"), nil
}

// LoadPlugin starts a plugin process and connects to it. An empty path
// selects the default location for name and version.
func LoadPlugin(name, version, path string) (*PluginClient, error) {
	pluginPath := path
	if pluginPath == "" {
		var err error
		pluginPath, err = GetPluginPath(name, version)
		if err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(pluginPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("plugin not found: %s (version %s) at %s", name, version, pluginPath)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "plugin." + name,
		Output: os.Stderr,
		Level:  hclog.Error, // Only show errors
	})

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap,
		Cmd:              exec.Command(pluginPath),
		Logger:           logger,
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to connect to plugin: %w", err)
	}

	raw, err := rpcClient.Dispense("tool")
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	provider, ok := raw.(ToolProvider)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin does not implement ToolProvider interface")
	}

	return &PluginClient{
		client:   client,
		provider: provider,
		name:     name,
	}, nil
}

// NewClient wraps an already connected provider. Close is a no-op for it.
func NewClient(name string, provider ToolProvider) *PluginClient {
	return &PluginClient{provider: provider, name: name}
}

// Configure passes settings to the plugin
func (p *PluginClient) Configure(settings map[string]string) error {
	return p.provider.Configure(settings)
}

// Call invokes a tool on the plugin
func (p *PluginClient) Call(toolName string, payload string) (string, error) {
	return p.provider.Call(toolName, payload)
}

// GetToolInfo returns metadata about a specific tool
func (p *PluginClient) GetToolInfo(toolName string) (*ToolInfo, error) {
	return p.provider.GetToolInfo(toolName)
}

// ListTools returns info for all tools this plugin provides
func (p *PluginClient) ListTools() ([]*ToolInfo, error) {
	return p.provider.ListTools()
}

// GetTool returns the named plugin tool, exposed under its qualified name
func (p *PluginClient) GetTool(toolName string) (aitools.Tool, error) {
	info, err := p.provider.GetToolInfo(toolName)
	if err != nil {
		return nil, err
	}
	return NewPluginTool(p.provider, info, QualifiedName(p.name, info.Name)), nil
}

// GetAllTools returns every tool this plugin provides, exposed under
// qualified names
func (p *PluginClient) GetAllTools() ([]aitools.Tool, error) {
	infos, err := p.provider.ListTools()
	if err != nil {
		return nil, err
	}
	tools := make([]aitools.Tool, 0, len(infos))
	for _, info := range infos {
		tools = append(tools, NewPluginTool(p.provider, info, QualifiedName(p.name, info.Name)))
	}
	return tools, nil
}

// Close shuts down the plugin
func (p *PluginClient) Close() {
	if p.client != nil {
		p.client.Kill()
	}
}

// Name returns the plugin name
func (p *PluginClient) Name() string {
	return p.name
}
