package wsbridge

import (
	"bytes"
	"encoding/json"

	"deskctl/aitools"
	"deskctl/registry"
)

// Request types
const (
	TypeCall = "call"
	TypeList = "list"
)

// Response types
const (
	TypeResult = "result"
	TypeTools  = "tools"
	TypeError  = "error"
)

// Request is one message from a client. ID is echoed in the response.
type Request struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Tool    string          `json:"tool,omitempty"`
	Payload aitools.Payload `json:"payload,omitempty"`
}

// Response answers exactly one Request
type Response struct {
	ID     string              `json:"id"`
	Type   string              `json:"type"`
	Result *aitools.Result     `json:"result,omitempty"`
	Tools  []registry.ToolInfo `json:"tools,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// decodeRequest parses a request, keeping payload numbers as json.Number
func decodeRequest(data []byte) (*Request, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func errorResponse(id, msg string) *Response {
	return &Response{ID: id, Type: TypeError, Error: msg}
}
