package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"deskctl/config"
)

var varsReveal bool

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Manage variables",
	Long: `Manage variables stored in ~/.deskctl/vars.txt (or $DESKCTL_VARS_FILE).
Config files read them as vars.<name>; DESKCTL_VAR_<name> overrides both.`,
}

var varsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := config.LoadVarsFromFile()
		if err != nil {
			return err
		}
		if len(vars) == 0 {
			fmt.Println("No variables set")
			return nil
		}

		secrets, err := declaredSecrets()
		if err != nil {
			return err
		}
		for _, name := range config.ListVarNames(vars) {
			value := vars[name]
			if !varsReveal && (secrets[name] || isSecretName(name)) {
				value = "********"
			}
			fmt.Printf("%s=%s\n", name, value)
		}
		return nil
	},
}

var varsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get a variable value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.GetVar(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var varsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a variable value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetVar(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Variable '%s' set\n", args[0])
		return nil
	},
}

var varsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteVar(args[0]); err != nil {
			return err
		}
		fmt.Printf("Variable '%s' deleted\n", args[0])
		return nil
	},
}

// declaredSecrets returns the variables marked secret in --config, if any
func declaredSecrets() (map[string]bool, error) {
	secrets := make(map[string]bool)
	if configPath == "" {
		return secrets, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	defer cfg.Close()
	for _, v := range cfg.Variables {
		if v.Secret {
			secrets[v.Name] = true
		}
	}
	return secrets, nil
}

// isSecretName reports whether a variable's value should be masked when listed
func isSecretName(name string) bool {
	name = strings.ToLower(name)
	for _, suffix := range []string{"_key", "_token", "_secret", "_password"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(varsCmd)
	varsCmd.AddCommand(varsListCmd, varsGetCmd, varsSetCmd, varsDeleteCmd)
	varsListCmd.Flags().BoolVar(&varsReveal, "reveal", false, "Print secret values instead of masking them")
}
