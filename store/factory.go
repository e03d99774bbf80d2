package store

import (
	"fmt"
	"os"
	"path/filepath"

	"deskctl/config"
)

// NewJournal creates a Journal based on the storage configuration
func NewJournal(cfg *config.StorageConfig) (Journal, error) {
	if cfg == nil {
		return NewMemoryJournal(), nil
	}

	switch cfg.Backend {
	case "sqlite":
		// Ensure directory exists
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
		}
		return NewSQLiteJournal(cfg.Path)

	case "memory", "":
		return NewMemoryJournal(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (expected 'memory' or 'sqlite')", cfg.Backend)
	}
}
