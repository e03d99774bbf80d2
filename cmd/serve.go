package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"deskctl/mcpbridge"
	"deskctl/wsbridge"
)

var (
	serveTransport string
	serveAddress   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tools to an agent",
	Long: `Serve the registered tools until interrupted.

The stdio transport speaks MCP on stdin/stdout. The websocket transport
listens on the configured address and answers JSON requests at /ws.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		rt, err := newRuntime(logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		transport := rt.cfg.Server.Transport
		if serveTransport != "" {
			transport = serveTransport
		}
		address := rt.cfg.Server.Address
		if serveAddress != "" {
			address = serveAddress
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		switch transport {
		case "stdio":
			srv, err := mcpbridge.New(rt.reg, rt.cfg.Server.Name, Version, logger)
			if err != nil {
				return err
			}
			return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
		case "websocket":
			return wsbridge.NewServer(rt.reg, logger).ListenAndServe(ctx, address)
		default:
			return fmt.Errorf("unknown transport '%s' (expected 'stdio' or 'websocket')", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", "", "Override the configured transport: stdio or websocket")
	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "Override the websocket listen address")
}
