package plugin

import (
	"encoding/json"

	"deskctl/aitools"
)

// ToolSeparator joins a plugin name and a tool name into the host-side name
const ToolSeparator = "__"

// QualifiedName returns the name a plugin tool is registered under
func QualifiedName(pluginName, toolName string) string {
	return pluginName + ToolSeparator + toolName
}

// PluginTool wraps a plugin tool and implements the aitools.Tool interface
type PluginTool struct {
	provider ToolProvider
	info     *ToolInfo
	name     string
}

var _ aitools.Tool = (*PluginTool)(nil)

// NewPluginTool creates a new PluginTool exposed under name
func NewPluginTool(provider ToolProvider, info *ToolInfo, name string) *PluginTool {
	if name == "" {
		name = info.Name
	}
	return &PluginTool{
		provider: provider,
		info:     info,
		name:     name,
	}
}

func (t *PluginTool) ToolName() string {
	return t.name
}

func (t *PluginTool) ToolDescription() string {
	return t.info.Description
}

func (t *PluginTool) ToolPayloadSchema() aitools.Schema {
	return t.info.Schema
}

// Execute forwards the payload to the plugin. Transport and decoding
// failures become failed results.
func (t *PluginTool) Execute(payload aitools.Payload) aitools.Result {
	if payload == nil {
		payload = aitools.Payload{}
	}
	in, err := json.Marshal(payload)
	if err != nil {
		return aitools.Failedf("encode payload: %v", err)
	}

	out, err := t.provider.Call(t.info.Name, string(in))
	if err != nil {
		return aitools.Failedf("plugin call %s failed: %v", t.name, err)
	}

	var result aitools.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return aitools.Failedf("plugin %s returned an invalid result: %v", t.name, err)
	}
	return result.Normalize()
}
