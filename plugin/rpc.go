package plugin

import (
	"encoding/json"
	"fmt"
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"
)

// ToolProviderPlugin is the go-plugin binding for ToolProvider over net/rpc
type ToolProviderPlugin struct {
	Impl ToolProvider
}

func (p *ToolProviderPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	if p.Impl == nil {
		return nil, fmt.Errorf("tool provider plugin has no implementation")
	}
	return &RPCServer{Impl: p.Impl}, nil
}

func (p *ToolProviderPlugin) Client(_ *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}

// CallArgs carries a tool invocation across the RPC boundary
type CallArgs struct {
	Tool    string
	Payload string
}

// WireToolInfo is ToolInfo with the schema flattened to JSON for gob
type WireToolInfo struct {
	Name        string
	Description string
	SchemaJSON  string
}

func toWire(info *ToolInfo) (WireToolInfo, error) {
	schema, err := json.Marshal(info.Schema)
	if err != nil {
		return WireToolInfo{}, fmt.Errorf("encode schema for %s: %w", info.Name, err)
	}
	return WireToolInfo{Name: info.Name, Description: info.Description, SchemaJSON: string(schema)}, nil
}

func fromWire(w WireToolInfo) (*ToolInfo, error) {
	info := &ToolInfo{Name: w.Name, Description: w.Description}
	if w.SchemaJSON != "" {
		if err := json.Unmarshal([]byte(w.SchemaJSON), &info.Schema); err != nil {
			return nil, fmt.Errorf("decode schema for %s: %w", w.Name, err)
		}
	}
	return info, nil
}

// RPCServer runs in the plugin process and forwards calls to the provider
type RPCServer struct {
	Impl ToolProvider
}

func (s *RPCServer) Configure(settings map[string]string, resp *string) error {
	return s.Impl.Configure(settings)
}

func (s *RPCServer) Call(args CallArgs, resp *string) error {
	out, err := s.Impl.Call(args.Tool, args.Payload)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

func (s *RPCServer) GetToolInfo(name string, resp *WireToolInfo) error {
	info, err := s.Impl.GetToolInfo(name)
	if err != nil {
		return err
	}
	w, err := toWire(info)
	if err != nil {
		return err
	}
	*resp = w
	return nil
}

func (s *RPCServer) ListTools(args interface{}, resp *[]WireToolInfo) error {
	infos, err := s.Impl.ListTools()
	if err != nil {
		return err
	}
	out := make([]WireToolInfo, 0, len(infos))
	for _, info := range infos {
		w, err := toWire(info)
		if err != nil {
			return err
		}
		out = append(out, w)
	}
	*resp = out
	return nil
}

// RPCClient runs in the host process and implements ToolProvider
type RPCClient struct {
	client *rpc.Client
}

var _ ToolProvider = (*RPCClient)(nil)

func (c *RPCClient) Configure(settings map[string]string) error {
	var resp string
	return c.client.Call("Plugin.Configure", settings, &resp)
}

func (c *RPCClient) Call(toolName string, payload string) (string, error) {
	var resp string
	err := c.client.Call("Plugin.Call", CallArgs{Tool: toolName, Payload: payload}, &resp)
	return resp, err
}

func (c *RPCClient) GetToolInfo(toolName string) (*ToolInfo, error) {
	var resp WireToolInfo
	if err := c.client.Call("Plugin.GetToolInfo", toolName, &resp); err != nil {
		return nil, err
	}
	return fromWire(resp)
}

func (c *RPCClient) ListTools() ([]*ToolInfo, error) {
	var resp []WireToolInfo
	if err := c.client.Call("Plugin.ListTools", new(interface{}), &resp); err != nil {
		return nil, err
	}
	infos := make([]*ToolInfo, 0, len(resp))
	for _, w := range resp {
		info, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
