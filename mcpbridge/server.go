package mcpbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"deskctl/aitools"
	"deskctl/registry"
)

// Server exposes the tools of a registry over the Model Context Protocol
type Server struct {
	reg    *registry.Registry
	mcp    *server.MCPServer
	logger hclog.Logger
}

// New builds an MCP server advertising every tool currently in reg
func New(reg *registry.Registry, name, version string, logger hclog.Logger) (*Server, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &Server{
		reg:    reg,
		mcp:    server.NewMCPServer(name, version, server.WithToolCapabilities(true)),
		logger: logger.Named("mcp"),
	}

	for _, info := range reg.List() {
		schema, err := json.Marshal(info.Parameters)
		if err != nil {
			return nil, fmt.Errorf("encode schema for %s: %w", info.Name, err)
		}
		tool := mcp.NewToolWithRawSchema(info.Name, info.Description, schema)
		s.mcp.AddTool(tool, s.handler(info.Name))
	}
	return s, nil
}

// MCPServer returns the underlying protocol server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil && request.Params.Arguments != nil {
			return mcp.NewToolResultError("invalid arguments format, expected object"), nil
		}

		result, err := s.reg.Call(name, aitools.Payload(args))
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}
		if !result.Success {
			s.logger.Debug("tool call failed", "tool", name, "error", result.ErrorMessage())
		}
		return ToCallToolResult(result), nil
	}
}

// ToCallToolResult converts a tool result to MCP content. An image carried
// as a data URI becomes image content next to the remaining fields.
func ToCallToolResult(r aitools.Result) *mcp.CallToolResult {
	if !r.Success {
		return mcp.NewToolResultError(r.ErrorMessage())
	}

	if img, _, rest := aitools.ExtractImage(r.Content); img != nil {
		text, err := json.Marshal(rest)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err))
		}
		return mcp.NewToolResultImage(string(text), img.Data, img.MediaType)
	}

	text, err := json.Marshal(r.Content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err))
	}
	return mcp.NewToolResultText(string(text))
}

// ServeStdio serves MCP over the given streams until ctx is cancelled or
// the input is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(s.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}))
	s.logger.Info("serving MCP over stdio", "tools", len(s.reg.Names()))
	return stdio.Listen(ctx, in, out)
}
