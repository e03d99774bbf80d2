package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"deskctl/aitools"
	"deskctl/registry"
)

// Renderer writes tool listings and results to a terminal. Markdown is
// rendered with glamour; when rendering fails the raw markdown is written.
type Renderer struct {
	out      io.Writer
	renderer *glamour.TermRenderer
	color    bool
}

// NewRenderer creates a renderer writing to out. With color false the
// output is plain text, which is what pipes and tests want.
func NewRenderer(out io.Writer, color bool) *Renderer {
	r := &Renderer{out: out, color: color}
	if color {
		r.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
	}
	return r
}

// Markdown renders md to the output
func (r *Renderer) Markdown(md string) {
	if r.renderer != nil {
		if out, err := r.renderer.Render(md); err == nil {
			fmt.Fprint(r.out, out)
			return
		}
	}
	fmt.Fprint(r.out, md)
}

// Tools renders the capability list
func (r *Renderer) Tools(tools []registry.ToolInfo) {
	r.Markdown(ToolsMarkdown(tools))
}

// Tool renders one tool with its full schema
func (r *Renderer) Tool(info registry.ToolInfo) {
	r.Markdown(ToolMarkdown(info))
}

// Result writes a status line followed by the indented JSON envelope
func (r *Renderer) Result(tool string, result aitools.Result) {
	status, c := "ok", ColorGreen
	if !result.Success {
		status, c = "failed", ColorRed
	}
	fmt.Fprintf(r.out, "%s %s\n", r.paint(c+ColorBold, status), r.paint(ColorBold, tool))
	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(r.out, result.String())
		return
	}
	fmt.Fprintln(r.out, string(body))
}

// History renders journal entries as a markdown table
func (r *Renderer) History(entries []registry.Invocation) {
	r.Markdown(HistoryMarkdown(entries))
}

func (r *Renderer) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ColorReset
}

// ToolsMarkdown lists tools with their actions and parameters
func ToolsMarkdown(tools []registry.ToolInfo) string {
	if len(tools) == 0 {
		return "No tools registered.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Tools (%d)\n\n", len(tools))
	for _, t := range tools {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", t.Name, t.Description)
		writeParameters(&b, t.Parameters)
	}
	return b.String()
}

// ToolMarkdown describes a single tool including its raw schema
func ToolMarkdown(info registry.ToolInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", info.Name, info.Description)
	writeParameters(&b, info.Parameters)
	body, err := json.MarshalIndent(info.Parameters, "", "  ")
	if err == nil {
		fmt.Fprintf(&b, "### Schema\n\n```json\n%s\n```\n", body)
	}
	return b.String()
}

func writeParameters(b *strings.Builder, s aitools.Schema) {
	names := s.PropertyNames()
	if len(names) == 0 {
		b.WriteString("_No parameters._\n\n")
		return
	}
	b.WriteString("| Parameter | Type | Required | Description |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		p := s.Properties[name]
		typ := string(p.Type)
		if len(p.Enum) > 0 {
			typ += ": " + strings.Join(p.Enum, ", ")
		}
		required := ""
		if s.IsRequired(name) {
			required = "yes"
		}
		fmt.Fprintf(b, "| `%s` | %s | %s | %s |\n", name, typ, required, cell(p.Description))
	}
	b.WriteString("\n")
}

// HistoryMarkdown renders journal entries newest first as given
func HistoryMarkdown(entries []registry.Invocation) string {
	if len(entries) == 0 {
		return "No invocations recorded.\n"
	}
	var b strings.Builder
	b.WriteString("| Time | Tool | Action | Status | Duration |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, inv := range entries {
		action, _ := inv.Payload["action"].(string)
		status := "ok"
		if !inv.Success {
			status = "failed: " + cell(inv.Error)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			inv.CreatedAt.Local().Format(time.DateTime), inv.Tool, action, status,
			inv.Duration.Round(time.Microsecond))
	}
	return b.String()
}

// cell makes s safe inside a markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
