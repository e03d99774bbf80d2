package plugin

import (
	goplugin "github.com/hashicorp/go-plugin"

	"deskctl/aitools"
)

// Handshake is the handshake config shared by deskctl and its plugins. It is
// a UX feature, not a security one: it stops users from running a plugin
// binary directly.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DESKCTL_PLUGIN",
	MagicCookieValue: "5f1c8a3e-computer-control",
}

// PluginMap is the map of plugins we can dispense
var PluginMap = map[string]goplugin.Plugin{
	"tool": &ToolProviderPlugin{},
}

// ToolInfo contains metadata about a tool
type ToolInfo struct {
	Name        string
	Description string
	Schema      aitools.Schema
}

// ToolProvider is the interface a plugin process serves. Payloads are JSON
// objects; results are JSON encoded aitools.Result values.
type ToolProvider interface {
	// Configure passes settings from HCL config to the plugin
	Configure(settings map[string]string) error

	// Call invokes a tool with the given JSON payload
	Call(toolName string, payload string) (string, error)

	// GetToolInfo returns metadata about a specific tool
	GetToolInfo(toolName string) (*ToolInfo, error)

	// ListTools returns info for all tools this plugin provides
	ListTools() ([]*ToolInfo, error)
}
