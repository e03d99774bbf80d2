package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"deskctl/aitools"
	"deskctl/wsbridge"
)

var callRemote string

var callCmd = &cobra.Command{
	Use:   "call <tool> [payload]",
	Short: "Call a tool once",
	Long: `Call a tool with a JSON payload and print the result envelope.
Use "-" as the payload to read it from stdin.`,
	Example: `  deskctl call computer_control '{"action":"mouse_move","x":10,"y":20}'
  deskctl call computer_control '{"action":"screenshot"}' --remote ws://127.0.0.1:8765/ws`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		toolName := args[0]
		payload, err := readPayload(args[1:])
		if err != nil {
			return err
		}

		var result aitools.Result
		if callRemote != "" {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			client, err := wsbridge.Dial(ctx, callRemote)
			if err != nil {
				return err
			}
			defer client.Close()
			if result, err = client.Call(ctx, toolName, payload); err != nil {
				return err
			}
		} else {
			rt, err := newRuntime(newLogger())
			if err != nil {
				return err
			}
			defer rt.Close()
			if result, err = rt.reg.Call(toolName, payload); err != nil {
				return err
			}
		}

		newRenderer().Result(toolName, result)
		if !result.Success {
			return fmt.Errorf("%s reported a failure", toolName)
		}
		return nil
	},
}

func readPayload(args []string) (aitools.Payload, error) {
	if len(args) == 0 {
		return aitools.Payload{}, nil
	}
	data := []byte(args[0])
	if args[0] == "-" {
		var err error
		if data, err = io.ReadAll(os.Stdin); err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
	}
	payload, err := aitools.ParsePayload(data)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVar(&callRemote, "remote", "", "Call through a running websocket server instead of a local backend")
}
