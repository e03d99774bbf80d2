package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"deskctl/plugin"
	"deskctl/registry"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Plugin commands",
	Long:  `Commands for serving deskctl as a plugin and for inspecting other plugins.`,
}

var pluginServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured tools as a go-plugin",
	Long: `Serve the configured tools over the go-plugin net/rpc protocol. This is
meant to be started by a plugin host, not run by hand.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		rt, err := newRuntime(logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		plugin.Serve(plugin.NewRegistryProvider(rt.reg), logger)
		return nil
	},
}

var pluginCallCmd = &cobra.Command{
	Use:   "call <plugin-name> <tool-name> [payload]",
	Short: "Call a tool on a plugin",
	Long:  `Call a tool on a plugin with an optional JSON payload.`,
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPluginFromFlags(cmd, args[0])
		if err != nil {
			return err
		}
		defer p.Close()

		tool, err := p.GetTool(args[1])
		if err != nil {
			return fmt.Errorf("failed to get tool: %w", err)
		}
		payload, err := readPayload(args[2:])
		if err != nil {
			return err
		}

		result := tool.Execute(payload)
		newRenderer().Result(tool.ToolName(), result)
		if !result.Success {
			return fmt.Errorf("%s reported a failure", tool.ToolName())
		}
		return nil
	},
}

var pluginToolsCmd = &cobra.Command{
	Use:   "tools <plugin-name>",
	Short: "List available tools on a plugin",
	Long:  `List all available tools that a plugin provides with their parameters.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPluginFromFlags(cmd, args[0])
		if err != nil {
			return err
		}
		defer p.Close()

		tools, err := p.ListTools()
		if err != nil {
			return fmt.Errorf("failed to list tools: %w", err)
		}

		infos := make([]registry.ToolInfo, len(tools))
		for i, t := range tools {
			infos[i] = registry.ToolInfo{Name: t.Name, Description: t.Description, Parameters: t.Schema}
		}
		newRenderer().Tools(infos)
		return nil
	},
}

func loadPluginFromFlags(cmd *cobra.Command, name string) (*plugin.PluginClient, error) {
	version, _ := cmd.Flags().GetString("version")
	path, _ := cmd.Flags().GetString("path")

	p, err := plugin.LoadPlugin(name, version, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load plugin: %w", err)
	}
	return p, nil
}

func init() {
	rootCmd.AddCommand(pluginCmd)
	pluginCmd.AddCommand(pluginServeCmd)
	pluginCmd.AddCommand(pluginCallCmd)
	pluginCmd.AddCommand(pluginToolsCmd)

	for _, c := range []*cobra.Command{pluginCallCmd, pluginToolsCmd} {
		c.Flags().StringP("version", "v", "local", "Plugin version to use")
		c.Flags().String("path", "", "Plugin binary (default ~/.deskctl/plugins/<name>/<version>/plugin)")
	}
}
