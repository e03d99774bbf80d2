package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"deskctl/registry"
	"deskctl/wsbridge"
)

var (
	toolsRemote string
	toolsJSON   bool
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var infos []registry.ToolInfo
		if toolsRemote != "" {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client, err := wsbridge.Dial(ctx, toolsRemote)
			if err != nil {
				return err
			}
			defer client.Close()
			if infos, err = client.List(ctx); err != nil {
				return err
			}
		} else {
			rt, err := newRuntime(newLogger())
			if err != nil {
				return err
			}
			defer rt.Close()
			infos = rt.reg.List()
		}

		if toolsJSON {
			return printJSON(infos)
		}
		newRenderer().Tools(infos)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <tool>",
	Short: "Show a tool's description and schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(newLogger())
		if err != nil {
			return err
		}
		defer rt.Close()

		tool, err := rt.reg.Lookup(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		info := registry.Info(tool)
		if toolsJSON {
			return printJSON(info)
		}
		newRenderer().Tool(info)
		return nil
	},
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(infoCmd)
	toolsCmd.Flags().StringVar(&toolsRemote, "remote", "", "List the tools of a running websocket server")
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Print JSON instead of a formatted listing")
	infoCmd.Flags().BoolVar(&toolsJSON, "json", false, "Print JSON instead of a formatted listing")
}
