package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"deskctl/aitools"
	"deskctl/registry"
)

// ErrNotFound is returned by Get for an unknown invocation ID
var ErrNotFound = errors.New("invocation not found")

// Journal keeps a history of tool invocations. Both implementations return
// payloads decoded from their stored JSON form, so they behave identically.
type Journal interface {
	registry.Recorder

	// List returns invocations newest first. An empty tool matches every
	// tool; a non-positive limit means no limit.
	List(tool string, limit, offset int) ([]registry.Invocation, error)
	Get(id string) (*registry.Invocation, error)
	Close() error
}

func encodePayload(p aitools.Payload) (string, error) {
	if p == nil {
		p = aitools.Payload{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(b), nil
}

func decodePayload(s string) (aitools.Payload, error) {
	p, err := aitools.ParsePayload([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}
