package config

import (
	"fmt"
	"regexp"
)

// Plugin represents a plugin configuration
type Plugin struct {
	Name     string            `hcl:"name,label"`
	Version  string            `hcl:"version"`
	Path     string            `hcl:"path,optional"`
	Settings map[string]string `hcl:"-"`
}

// semverRegex matches semantic versioning strings like v1.0.0, v0.1.0-beta, etc.
// Also allows "local" for locally built plugins
var semverRegex = regexp.MustCompile(`^(local|v?\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?)$`)

// reservedPluginNames cannot be used as plugin names
var reservedPluginNames = map[string]bool{
	"deskctl":  true,
	"computer": true,
}

// IsReservedPluginNamespace reports whether name is reserved for built-in tools
func IsReservedPluginNamespace(name string) bool {
	return reservedPluginNames[name]
}

// Validate checks that the plugin configuration is valid
func (p *Plugin) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("plugin name is required")
	}

	if IsReservedPluginNamespace(p.Name) {
		return fmt.Errorf("plugin name '%s' is reserved for built-in tools", p.Name)
	}

	if !toolNamePattern.MatchString(p.Name) {
		return fmt.Errorf("invalid plugin name '%s': must start with a letter and contain only letters, digits and underscores", p.Name)
	}

	if p.Version == "" {
		return fmt.Errorf("plugin version is required")
	}

	if !semverRegex.MatchString(p.Version) {
		return fmt.Errorf("invalid version '%s': must be 'local' or semantic version (e.g., v1.0.0)", p.Version)
	}

	return nil
}

// IsLocal returns true if this is a locally built plugin
func (p *Plugin) IsLocal() bool {
	return p.Version == "local"
}
