package config

import (
	"fmt"
	"strings"
)

// envPrefix names the environment override for a variable, e.g.
// DESKCTL_VAR_vnc_password for variable "vnc_password"
const envPrefix = "DESKCTL_VAR_"

// Variable declares a value that other blocks reference as vars.<name>.
// Secret variables must be set outside the config.
type Variable struct {
	Name    string `hcl:"name,label"`
	Default string `hcl:"default,optional"`
	Secret  bool   `hcl:"secret,optional"`
}

// EnvName is the environment variable that overrides v
func (v *Variable) EnvName() string {
	return envPrefix + v.Name
}

func (v *Variable) Validate() error {
	if !toolNamePattern.MatchString(v.Name) {
		return fmt.Errorf("invalid variable name '%s'", v.Name)
	}
	if v.Secret && strings.TrimSpace(v.Default) != "" {
		return fmt.Errorf("secret variable '%s' cannot have a default value set in config", v.Name)
	}
	return nil
}
