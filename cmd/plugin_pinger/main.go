// Command plugin_pinger is a minimal deskctl plugin used to exercise the
// plugin transport end to end.
package main

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"deskctl/aitools"
	"deskctl/plugin"
	"deskctl/registry"
)

type replyTool struct {
	name, description, reply string
}

func (t replyTool) ToolName() string        { return t.name }
func (t replyTool) ToolDescription() string { return t.description }
func (t replyTool) ToolPayloadSchema() aitools.Schema {
	return aitools.Schema{Type: aitools.TypeObject, Properties: aitools.PropertyMap{}}
}
func (t replyTool) Execute(aitools.Payload) aitools.Result {
	return aitools.Succeeded(map[string]any{"reply": t.reply})
}

// echoTool echoes its message, optionally in capitals. The prefix setting
// is applied through Configure.
type echoTool struct {
	prefix string
}

func (e *echoTool) ToolName() string        { return "echo" }
func (e *echoTool) ToolDescription() string { return "Echoes back the message provided" }
func (e *echoTool) ToolPayloadSchema() aitools.Schema {
	return aitools.Schema{
		Type: aitools.TypeObject,
		Properties: aitools.PropertyMap{
			"message": {
				Type:        aitools.TypeString,
				Description: "The message to echo back",
			},
			"all_caps": {
				Type:        aitools.TypeBoolean,
				Description: "When true, capitalizes the echoed message",
			},
		},
		Required: []string{"message"},
	}
}

func (e *echoTool) Configure(settings map[string]string) error {
	e.prefix = settings["prefix"]
	return nil
}

func (e *echoTool) Execute(p aitools.Payload) aitools.Result {
	msg, err := p.String("message")
	if err != nil {
		return aitools.Failed(err.Error())
	}
	caps, err := p.OptionalBool("all_caps", false)
	if err != nil {
		return aitools.Failed(err.Error())
	}
	msg = e.prefix + msg
	if caps {
		msg = strings.ToUpper(msg)
	}
	return aitools.Succeeded(map[string]any{"message": msg})
}

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "pinger",
		Output:     os.Stderr,
		Level:      hclog.Info,
		JSONFormat: true,
	})

	reg := registry.New(registry.Options{Logger: logger})
	for _, t := range []aitools.Tool{
		replyTool{name: "ping", description: "Returns 'pong' when called", reply: "pong"},
		replyTool{name: "pong", description: "Returns 'ping' when called", reply: "ping"},
		&echoTool{},
	} {
		if err := reg.Register(t); err != nil {
			logger.Error("register tool", "tool", t.ToolName(), "error", err)
			os.Exit(1)
		}
	}

	plugin.Serve(plugin.NewRegistryProvider(reg), logger)
}
