package cmd

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"deskctl/cli"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "deskctl",
	Short:        "Screen, mouse and keyboard control for AI agents",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the root logger. It always writes to stderr so the
// stdio transport owns stdout.
func newLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "deskctl",
		Level:  hclog.LevelFromString(logLevel),
		Output: os.Stderr,
		Color:  hclog.AutoColor,
	})
}

func newRenderer() *cli.Renderer {
	return cli.NewRenderer(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file or directory (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
}
