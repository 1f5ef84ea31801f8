package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tkohara/ccsm/internal/transcript"
)

// MarkdownExporter writes the full conversation as markdown. Unlike the
// plain-text previews, tool payloads are rendered here in fenced blocks.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Extension() string { return "md" }

func (e *MarkdownExporter) Export(s *Session, w io.Writer) error {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Session %s\n\n", s.Summary.ID))
	if s.Summary.Summary != "" {
		b.WriteString(fmt.Sprintf("> %s\n\n", s.Summary.Summary))
	}
	b.WriteString(fmt.Sprintf("- **Started:** %s\n", s.Summary.Timestamp))
	b.WriteString(fmt.Sprintf("- **Directory:** %s\n", s.Summary.Cwd))
	if s.Summary.GitBranch != "" {
		b.WriteString(fmt.Sprintf("- **Branch:** %s\n", s.Summary.GitBranch))
	}
	b.WriteString(fmt.Sprintf("- **Messages:** %d\n\n", s.Summary.MessageCount))

	for _, m := range s.Messages {
		if m.IsMeta {
			continue
		}

		switch m.Role {
		case "user":
			b.WriteString(fmt.Sprintf("## User (%s)\n\n", m.Timestamp))
		case "assistant":
			b.WriteString(fmt.Sprintf("## Assistant (%s)\n\n", m.Timestamp))
		default:
			b.WriteString(fmt.Sprintf("## %s (%s)\n\n", titleRole(m.Role), m.Timestamp))
		}

		for _, blk := range m.Blocks() {
			switch blk.Type {
			case "text":
				if blk.Text != "" {
					b.WriteString(blk.Text)
					b.WriteString("\n\n")
				}
			case "thinking":
				if blk.Thinking != "" {
					b.WriteString("<details><summary>Thinking</summary>\n\n")
					b.WriteString(blk.Thinking)
					b.WriteString("\n\n</details>\n\n")
				}
			case "tool_use":
				b.WriteString(fmt.Sprintf("**Tool: %s**\n\n", blk.Name))
				if len(blk.Input) > 0 {
					b.WriteString("```json\n")
					b.WriteString(string(blk.Input))
					b.WriteString("\n```\n\n")
				}
			case "tool_result":
				b.WriteString("**Tool result:**\n\n```\n")
				b.WriteString(toolResultText(blk.Content))
				b.WriteString("\n```\n\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// toolResultText flattens a tool_result content value for the fenced block.
func toolResultText(content json.RawMessage) string {
	return transcript.Text(content)
}

func titleRole(role string) string {
	if role == "" {
		return "Unknown"
	}
	r, size := utf8.DecodeRuneInString(role)
	return string(unicode.ToUpper(r)) + role[size:]
}
