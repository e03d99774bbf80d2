package aitools

import (
	"encoding/json"
	"fmt"
)

// Result is the uniform envelope every tool execution returns.
// Success is false exactly when Error is non-nil. Content is always set.
type Result struct {
	Success bool    `json:"success"`
	Content any     `json:"content"`
	Error   *string `json:"error"`
}

// Succeeded builds a successful result carrying content
func Succeeded(content any) Result {
	if content == nil {
		content = map[string]any{}
	}
	return Result{Success: true, Content: content}
}

// Failed builds a reported failure. The message is mirrored into the content
// so callers that only read content still see it.
func Failed(msg string) Result {
	if msg == "" {
		msg = "unknown error"
	}
	return Result{
		Success: false,
		Content: map[string]any{"error": msg},
		Error:   &msg,
	}
}

// Failedf is Failed with a format string
func Failedf(format string, args ...any) Result {
	return Failed(fmt.Sprintf(format, args...))
}

// ErrorMessage returns the error message, or "" for a successful result
func (r Result) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// Normalize repairs a result decoded from an untrusted source so that the
// success/error invariant holds.
func (r Result) Normalize() Result {
	switch {
	case r.Error != nil:
		return Failed(*r.Error)
	case !r.Success:
		return Failed("")
	default:
		return Succeeded(r.Content)
	}
}

// String returns the JSON representation of the result
func (r Result) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"content":null,"error":%q}`, err.Error())
	}
	return string(b)
}
