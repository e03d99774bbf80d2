package config

import "fmt"

// StorageConfig defines where the invocation journal is kept
type StorageConfig struct {
	Backend string `hcl:"backend,optional"` // "memory" or "sqlite"
	Path    string `hcl:"path,optional"`    // SQLite file path (default: ".deskctl/journal.db")
}

// Defaults fills in default values for unset fields
func (s *StorageConfig) Defaults() {
	if s.Backend == "" {
		s.Backend = "memory"
	}
	if s.Path == "" {
		s.Path = ".deskctl/journal.db"
	}
}

// Validate checks the storage block after defaults are applied
func (s *StorageConfig) Validate() error {
	switch s.Backend {
	case "memory", "sqlite":
		return nil
	default:
		return fmt.Errorf("storage: unknown backend '%s' (expected 'memory' or 'sqlite')", s.Backend)
	}
}
