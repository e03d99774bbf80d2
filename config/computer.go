package config

import (
	"fmt"
	"time"
)

// ComputerConfig configures the computer_control tool
type ComputerConfig struct {
	Name             string `hcl:"name,optional"`
	DoubleClickDelay string `hcl:"double_click_delay,optional"`
}

// Defaults fills in default values for unset fields
func (c *ComputerConfig) Defaults() {
	if c.Name == "" {
		c.Name = "computer_control"
	}
	if c.DoubleClickDelay == "" {
		c.DoubleClickDelay = "50ms"
	}
}

// Validate checks the computer block after defaults are applied
func (c *ComputerConfig) Validate() error {
	if !toolNamePattern.MatchString(c.Name) {
		return fmt.Errorf("computer: invalid name '%s': must start with a letter and contain only letters, digits and underscores", c.Name)
	}
	d, err := time.ParseDuration(c.DoubleClickDelay)
	if err != nil {
		return fmt.Errorf("computer: invalid double_click_delay '%s': %w", c.DoubleClickDelay, err)
	}
	if d <= 0 {
		return fmt.Errorf("computer: double_click_delay must be positive, got '%s'", c.DoubleClickDelay)
	}
	return nil
}

// Delay returns the parsed double-click delay. Call after Validate.
func (c *ComputerConfig) Delay() time.Duration {
	d, _ := time.ParseDuration(c.DoubleClickDelay)
	return d
}
