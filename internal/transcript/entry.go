package transcript

import (
	"bytes"
	"encoding/json"
)

// Kind identifies which of the record variants a transcript line is.
type Kind int

const (
	KindUnknown Kind = iota
	KindMetadata
	KindSummary
	KindMessage // wrapped form: role lives inside the message object
	KindUser    // legacy direct form
	KindAssistant
)

// Entry is one parsed line of a session transcript. Fields that only
// apply to some variants are zero for the others.
type Entry struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Cwd       string          `json:"cwd"`
	GitBranch string          `json:"gitBranch"`
	Version   string          `json:"version"`
	RequestID string          `json:"requestId"`
	IsMeta    bool            `json:"isMeta"`
	Summary   string          `json:"summary"`
	Message   json.RawMessage `json:"message"`

	// Raw holds the original line so raw-export consumers can round-trip
	// records that classification skips.
	Raw []byte `json:"-"`
}

// Kind maps the type tag to a record variant. Unrecognized or missing
// tags are KindUnknown: skipped for aggregation, kept for raw export.
func (e *Entry) Kind() Kind {
	switch e.Type {
	case "metadata":
		return KindMetadata
	case "summary":
		return KindSummary
	case "message":
		return KindMessage
	case "user":
		return KindUser
	case "assistant":
		return KindAssistant
	default:
		return KindUnknown
	}
}

// ParseLine converts one line of text into an Entry. Empty and malformed
// lines produce no record: a truncated write at crash time must not make
// the rest of the file unreadable, so there is no error to report.
func ParseLine(line []byte) (Entry, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return Entry{}, false
	}
	e.Raw = append([]byte(nil), trimmed...)
	return e, true
}

// wireMessage is the nested message object on message-bearing records.
type wireMessage struct {
	Role       string          `json:"role"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Content    json.RawMessage `json:"content"`
	Usage      *Usage          `json:"usage"`
}

// ContentBlock is one block in a content array.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// Usage tracks token consumption reported on assistant records.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}
