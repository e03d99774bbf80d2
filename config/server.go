package config

import (
	"fmt"
	"net"
)

// ServerConfig configures how deskctl serve exposes its tools
type ServerConfig struct {
	Name      string `hcl:"name,optional"`
	Transport string `hcl:"transport,optional"` // "stdio" (MCP) or "websocket"
	Address   string `hcl:"address,optional"`   // listen address for the websocket transport
}

// Defaults fills in default values for unset fields
func (s *ServerConfig) Defaults() {
	if s.Name == "" {
		s.Name = "deskctl"
	}
	if s.Transport == "" {
		s.Transport = "stdio"
	}
	if s.Address == "" {
		s.Address = "127.0.0.1:8765"
	}
}

// Validate checks the server block after defaults are applied
func (s *ServerConfig) Validate() error {
	switch s.Transport {
	case "stdio":
	case "websocket":
		if _, _, err := net.SplitHostPort(s.Address); err != nil {
			return fmt.Errorf("server: invalid address '%s': %w", s.Address, err)
		}
	default:
		return fmt.Errorf("server: unknown transport '%s' (expected 'stdio' or 'websocket')", s.Transport)
	}
	return nil
}
