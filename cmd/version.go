package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Long = fmt.Sprintf(`deskctl %s

Gives AI agents eyes and hands on a desktop: screenshots, mouse moves and
clicks, key presses, typing and scrolling, behind one JSON tool.

Get started:
  deskctl tools                 List the available tools
  deskctl call <tool> <json>    Call a tool once
  deskctl serve                 Serve the tools over MCP on stdio
  deskctl verify <path>         Validate your configuration`, Version)
}
