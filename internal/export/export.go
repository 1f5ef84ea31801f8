// Package export writes a session in one of several output formats.
package export

import (
	"fmt"
	"io"

	"github.com/tkohara/ccsm/internal/transcript"
)

// Session is everything an exporter needs: the folded summary, the
// normalized message list, and the path of the raw transcript.
type Session struct {
	Summary  transcript.SessionSummary
	Messages []transcript.Message
	FilePath string
}

// Exporter defines the interface for all export formats.
type Exporter interface {
	Export(session *Session, w io.Writer) error
	Extension() string
}

// Filename returns the default output filename for a session exported
// with e, e.g. "0f79205f.md".
func Filename(sessionID string, e Exporter) string {
	return fmt.Sprintf("%s.%s", sessionID, e.Extension())
}

// NewExporter creates a new exporter based on format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: md, json, jsonl, yaml)", format)
	}
}

// document is the normalized shape the structured exporters share.
type document struct {
	Session  sessionDoc   `json:"session" yaml:"session"`
	Messages []messageDoc `json:"messages" yaml:"messages"`
}

type sessionDoc struct {
	ID           string `json:"id" yaml:"id"`
	Timestamp    string `json:"timestamp" yaml:"timestamp"`
	Cwd          string `json:"cwd" yaml:"cwd"`
	GitBranch    string `json:"gitBranch,omitempty" yaml:"gitBranch,omitempty"`
	Status       string `json:"status" yaml:"status"`
	MessageCount int    `json:"messageCount" yaml:"messageCount"`
	LastMessage  string `json:"lastMessage" yaml:"lastMessage"`
	Summary      string `json:"summary" yaml:"summary"`
}

type messageDoc struct {
	Role      string `json:"role" yaml:"role"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	IsMeta    bool   `json:"isMeta,omitempty" yaml:"isMeta,omitempty"`
	Text      string `json:"text" yaml:"text"`
}

func buildDocument(s *Session) document {
	doc := document{
		Session: sessionDoc{
			ID:           s.Summary.ID,
			Timestamp:    s.Summary.Timestamp,
			Cwd:          s.Summary.Cwd,
			GitBranch:    s.Summary.GitBranch,
			Status:       s.Summary.Status,
			MessageCount: s.Summary.MessageCount,
			LastMessage:  s.Summary.LastMessage,
			Summary:      s.Summary.Summary,
		},
	}
	for _, m := range s.Messages {
		doc.Messages = append(doc.Messages, messageDoc{
			Role:      m.Role,
			Timestamp: m.Timestamp,
			IsMeta:    m.IsMeta,
			Text:      m.Text(),
		})
	}
	return doc
}
