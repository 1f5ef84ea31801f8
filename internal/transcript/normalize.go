package transcript

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// commandMarker appears in user records injected by slash commands.
// Text carrying it is tool-driven, not user intent, and never becomes
// the session's last message.
const commandMarker = "<command-name>"

// lastMessageMax is the rune limit for SessionSummary.LastMessage.
const lastMessageMax = 100

// Session status values derived from transcript file state.
const (
	StatusActive   = "active"
	StatusIdle     = "idle"
	StatusArchived = "archived"
)

// activeWindow is how recently a transcript must have been written to
// count its session as active.
const activeWindow = 5 * time.Minute

// Message is the uniform shape any message-bearing record reduces to.
// Content is the wire value: a JSON string or a content-block array.
type Message struct {
	Role      string
	Content   json.RawMessage
	Timestamp string
	IsMeta    bool
	Model     string
}

// Text returns the flattened human-readable text of the message.
func (m Message) Text() string {
	return Text(m.Content)
}

// Blocks returns the typed content blocks of the message. String content
// becomes a single text block.
func (m Message) Blocks() []ContentBlock {
	return Blocks(m.Content)
}

// SessionSummary is the aggregate record representing one transcript
// for listing purposes.
type SessionSummary struct {
	ID           string
	Timestamp    string
	UpdatedAt    string
	Cwd          string
	GitBranch    string
	Status       string
	MessageCount int
	LastMessage  string
	Summary      string
}

// message reduces a message-bearing entry to the normalized shape.
// Records whose nested structure does not parse contribute nothing.
func (e *Entry) message() (Message, bool) {
	if len(e.Message) == 0 {
		return Message{}, false
	}
	var wm wireMessage
	if err := json.Unmarshal(e.Message, &wm); err != nil {
		return Message{}, false
	}

	role := wm.Role
	if role == "" {
		// legacy direct records carry the role as the type tag
		switch e.Kind() {
		case KindUser:
			role = "user"
		case KindAssistant:
			role = "assistant"
		default:
			return Message{}, false
		}
	}

	m := Message{
		Role:      role,
		Content:   wm.Content,
		Timestamp: e.Timestamp,
		IsMeta:    e.IsMeta,
		Model:     wm.Model,
	}
	if e.IsMeta {
		// meta records survive as placeholders, never with content
		m.Content = nil
	}
	return m, true
}

// Summarize folds a transcript stream into its SessionSummary.
// Malformed lines are skipped; an empty result (MessageCount=0) is a
// valid outcome, not an error.
func Summarize(r io.Reader, id string) (SessionSummary, error) {
	sum := SessionSummary{ID: id}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	seeded := false
	seededMeta := false
	for sc.Scan() {
		e, ok := ParseLine(sc.Bytes())
		if !ok {
			continue
		}

		if !seeded {
			// legacy files have no metadata record; the first record
			// seeds the session fields instead
			sum.Timestamp = e.Timestamp
			sum.Cwd = e.Cwd
			sum.GitBranch = e.GitBranch
			seeded = true
		}
		if e.Timestamp != "" {
			sum.UpdatedAt = e.Timestamp
		}

		switch e.Kind() {
		case KindMetadata:
			if !seededMeta {
				sum.Timestamp = e.Timestamp
				sum.Cwd = e.Cwd
				sum.GitBranch = e.GitBranch
				seededMeta = true
			}
		case KindSummary:
			sum.Summary = e.Summary
		case KindMessage, KindUser, KindAssistant:
			if e.IsMeta {
				continue
			}
			m, ok := e.message()
			if !ok {
				continue
			}
			sum.MessageCount++
			if m.Role == "user" {
				text := m.Text()
				if text != "" && !strings.Contains(text, commandMarker) {
					sum.LastMessage = text
				}
			}
		case KindUnknown:
			// unclassified lines are raw-export material only
		}
	}
	if err := sc.Err(); err != nil {
		return sum, err
	}

	sum.LastMessage = truncateRunes(sum.LastMessage, lastMessageMax)
	return sum, nil
}

// Expand folds a transcript stream into the ordered message list.
// Records that carry no message are skipped; IsMeta entries are kept as
// empty-content placeholders so rendering can choose to suppress them.
func Expand(r io.Reader) ([]Message, error) {
	var msgs []Message

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for sc.Scan() {
		e, ok := ParseLine(sc.Bytes())
		if !ok {
			continue
		}
		switch e.Kind() {
		case KindMessage, KindUser, KindAssistant:
			if m, ok := e.message(); ok {
				msgs = append(msgs, m)
			}
		}
	}
	return msgs, sc.Err()
}

// SummarizeFile summarizes the transcript at path. The filename stem is
// the session ID and the file mtime decides the session status.
func SummarizeFile(path string) (SessionSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return SessionSummary{}, err
	}
	defer f.Close()

	id := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	sum, err := Summarize(f, id)
	if err != nil {
		return sum, err
	}

	sum.Status = StatusIdle
	if info, err := f.Stat(); err == nil {
		if time.Since(info.ModTime()) < activeWindow {
			sum.Status = StatusActive
		}
	}
	return sum, nil
}

// ExpandFile expands the transcript at path into its message list.
func ExpandFile(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Expand(f)
}

// Text flattens a content value to plain text: strings pass through
// unchanged, block lists join the text blocks with newlines. Tool and
// thinking payloads are excluded so previews stay human-readable.
func Text(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Blocks returns the typed content blocks of a content value.
func Blocks(content json.RawMessage) []ContentBlock {
	if len(content) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return []ContentBlock{{Type: "text", Text: s}}
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return nil
	}
	return blocks
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// ParseTimestamp parses the timestamp formats observed in transcripts.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
