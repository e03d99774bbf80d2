package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"deskctl/aitools"
	"deskctl/registry"
)

// RegistryProvider serves the tools of a registry as a ToolProvider
type RegistryProvider struct {
	reg *registry.Registry
}

var _ ToolProvider = (*RegistryProvider)(nil)

// NewRegistryProvider exposes reg over the plugin protocol
func NewRegistryProvider(reg *registry.Registry) *RegistryProvider {
	return &RegistryProvider{reg: reg}
}

// Configure forwards settings to every tool that accepts them
func (p *RegistryProvider) Configure(settings map[string]string) error {
	for _, name := range p.reg.Names() {
		tool, err := p.reg.Lookup(name)
		if err != nil {
			continue
		}
		if c, ok := tool.(aitools.Configurable); ok {
			if err := c.Configure(settings); err != nil {
				return fmt.Errorf("configure %s: %w", name, err)
			}
		}
	}
	return nil
}

func (p *RegistryProvider) Call(toolName string, payload string) (string, error) {
	parsed, err := aitools.ParsePayload([]byte(payload))
	var result aitools.Result
	if err != nil {
		result = aitools.Failed(err.Error())
	} else {
		result, err = p.reg.Call(toolName, parsed)
		if err != nil {
			return "", err
		}
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(out), nil
}

func (p *RegistryProvider) GetToolInfo(toolName string) (*ToolInfo, error) {
	tool, err := p.reg.Lookup(toolName)
	if err != nil {
		return nil, err
	}
	info := registry.Info(tool)
	return &ToolInfo{Name: info.Name, Description: info.Description, Schema: info.Parameters}, nil
}

func (p *RegistryProvider) ListTools() ([]*ToolInfo, error) {
	infos := p.reg.List()
	out := make([]*ToolInfo, len(infos))
	for i, info := range infos {
		out[i] = &ToolInfo{Name: info.Name, Description: info.Description, Schema: info.Parameters}
	}
	return out, nil
}

// Serve runs provider as a plugin process. It blocks until the host
// disconnects.
func Serve(provider ToolProvider, logger hclog.Logger) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			"tool": &ToolProviderPlugin{Impl: provider},
		},
		Logger: logger,
	})
}
