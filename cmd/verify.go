package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"deskctl/config"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify that the configuration is valid",
	Long:  `Verify parses and validates the HCL configuration files. Path can be a file or directory.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cfg.Close()

		// Check for unset variables
		var warnings []string
		for _, v := range cfg.Variables {
			resolved, _ := config.ResolveVariableValue(&v)
			if resolved == "" && v.Default == "" {
				warnings = append(warnings, fmt.Sprintf("variable '%s' has no default and no value set", v.Name))
			}
		}

		fmt.Printf("Configuration is valid!\n")
		fmt.Printf("Computer tool: %s (double click delay: %s)\n", cfg.Computer.Name, cfg.Computer.Delay())

		b := cfg.Backend
		switch b.Type {
		case "browser":
			target := "launch"
			if b.Endpoint != "" {
				target = "connect " + b.Endpoint
			}
			fmt.Printf("Backend: browser (%s, %s, headless: %v, %dx%d, screens: %d)\n",
				b.Browser, target, b.IsHeadless(), b.Width, b.Height, b.Screens)
		default:
			fmt.Printf("Backend: %s (%dx%d, screens: %d)\n", b.Type, b.Width, b.Height, b.Screens)
		}

		if cfg.Storage.Backend == "sqlite" {
			fmt.Printf("Storage: sqlite (%s)\n", cfg.Storage.Path)
		} else {
			fmt.Printf("Storage: %s\n", cfg.Storage.Backend)
		}
		fmt.Printf("Server: %s via %s", cfg.Server.Name, cfg.Server.Transport)
		if cfg.Server.Transport == "websocket" {
			fmt.Printf(" on %s", cfg.Server.Address)
		}
		fmt.Println()

		fmt.Printf("Found %d variable(s)\n", len(cfg.Variables))
		for _, v := range cfg.Variables {
			resolved, _ := config.ResolveVariableValue(&v)
			if v.Secret {
				if resolved != "" {
					fmt.Printf("  - %s (secret, set)\n", v.Name)
				} else {
					fmt.Printf("  - %s (secret, not set)\n", v.Name)
				}
			} else {
				fmt.Printf("  - %s = %q\n", v.Name, resolved)
			}
		}
		fmt.Printf("Found %d plugin(s)\n", len(cfg.Plugins))
		for _, p := range cfg.Plugins {
			loaded := "loaded"
			if _, ok := cfg.LoadedPlugins[p.Name]; !ok {
				loaded = "NOT LOADED"
			}
			fmt.Printf("  - %s (version: %s, settings: %d, %s)\n", p.Name, p.Version, len(p.Settings), loaded)
		}

		// Add plugin warnings to the warnings list
		warnings = append(warnings, cfg.PluginWarnings...)

		if len(warnings) > 0 {
			fmt.Printf("\nWarnings:\n")
			for _, w := range warnings {
				fmt.Printf("  - %s\n", w)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
