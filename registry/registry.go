package registry

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"deskctl/aitools"
)

var (
	// ErrDuplicateName is returned when a tool name is already registered
	ErrDuplicateName = errors.New("tool already exists")
	// ErrNotFound is returned when no tool has the requested name
	ErrNotFound = errors.New("tool not found")
)

// ToolInfo is the read-only projection of a tool used for capability discovery
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  aitools.Schema `json:"parameters"`
}

// Invocation is one completed Call, as handed to a Recorder
type Invocation struct {
	ID        string          `json:"id"`
	Tool      string          `json:"tool"`
	Payload   aitools.Payload `json:"payload"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	Duration  time.Duration   `json:"duration_ns"`
	CreatedAt time.Time       `json:"created_at"`
}

// Recorder receives every completed Call
type Recorder interface {
	Record(inv Invocation) error
}

// Options configures a Registry
type Options struct {
	Logger   hclog.Logger
	Recorder Recorder
}

// Registry maps tool names to tools. It owns the tools registered with it
// and is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]aitools.Tool
	order    []string
	logger   hclog.Logger
	recorder Recorder
	now      func() time.Time
}

// New creates an empty registry
func New(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Registry{
		tools:    make(map[string]aitools.Tool),
		logger:   logger.Named("registry"),
		recorder: opts.Recorder,
		now:      time.Now,
	}
}

// Register adds a tool. A name collision fails with ErrDuplicateName and
// leaves the existing tool in place.
func (r *Registry) Register(tool aitools.Tool) error {
	name := tool.ToolName()
	if name == "" {
		return fmt.Errorf("register tool: empty name")
	}
	if tool.ToolDescription() == "" {
		return fmt.Errorf("register tool '%s': empty description", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("register tool '%s': %w", name, ErrDuplicateName)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	r.logger.Debug("registered tool", "tool", name)
	return nil
}

// Unregister removes a tool and returns it so the caller can release it
func (r *Registry) Unregister(name string) (aitools.Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unregister tool '%s': %w", name, ErrNotFound)
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return tool, nil
}

// Lookup returns the tool registered under name
func (r *Registry) Lookup(name string) (aitools.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("lookup tool '%s': %w", name, ErrNotFound)
	}
	return tool, nil
}

// Names returns the registered tool names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// List returns every tool's info in registration order
func (r *Registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, Info(r.tools[name]))
	}
	return infos
}

// Info projects a tool to its ToolInfo
func Info(tool aitools.Tool) ToolInfo {
	return ToolInfo{
		Name:        tool.ToolName(),
		Description: tool.ToolDescription(),
		Parameters:  tool.ToolPayloadSchema(),
	}
}

// Call looks up name and executes payload against it. Only a missing tool is
// returned as an error; every execution outcome is in the Result.
func (r *Registry) Call(name string, payload aitools.Payload) (aitools.Result, error) {
	tool, err := r.Lookup(name)
	if err != nil {
		return aitools.Result{}, err
	}
	if payload == nil {
		payload = aitools.Payload{}
	}

	start := r.now()
	result := execute(tool, payload)
	elapsed := r.now().Sub(start)

	if r.recorder != nil {
		inv := Invocation{
			ID:        uuid.NewString(),
			Tool:      name,
			Payload:   payload,
			Success:   result.Success,
			Error:     result.ErrorMessage(),
			Duration:  elapsed,
			CreatedAt: start,
		}
		if err := r.recorder.Record(inv); err != nil {
			r.logger.Warn("failed to record invocation", "tool", name, "error", err)
		}
	}
	return result, nil
}

// execute keeps a panicking tool from unwinding into the host
func execute(tool aitools.Tool, payload aitools.Payload) (result aitools.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = aitools.Failedf("tool '%s' panicked: %v", tool.ToolName(), rec)
		}
	}()
	return tool.Execute(payload).Normalize()
}

// Close releases every registered tool that holds resources
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, name := range r.order {
		if c, ok := r.tools[name].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close tool '%s': %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}
