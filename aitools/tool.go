package aitools

// Tool defines the interface for a callable capability
type Tool interface {
	// ToolName returns the name of the tool
	ToolName() string

	// ToolDescription returns a description of what the tool does
	ToolDescription() string

	// ToolPayloadSchema returns the JSON schema for the tool's input parameters
	ToolPayloadSchema() Schema

	// Execute runs the tool against an untyped payload. Failures are reported
	// in the returned Result, never as a panic or a separate error.
	Execute(payload Payload) Result
}

// Configurable is implemented by tools that accept runtime settings,
// e.g. settings forwarded from a plugin block.
type Configurable interface {
	Configure(settings map[string]string) error
}
