package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
		kind Kind
	}{
		{"empty", "", false, KindUnknown},
		{"whitespace", "   \t", false, KindUnknown},
		{"garbage", "{not json", false, KindUnknown},
		{"metadata", `{"type":"metadata","timestamp":"2024-01-01T00:00:00Z","cwd":"/tmp"}`, true, KindMetadata},
		{"summary", `{"type":"summary","summary":"did stuff"}`, true, KindSummary},
		{"wrapped message", `{"type":"message","message":{"role":"user","content":"hi"}}`, true, KindMessage},
		{"direct user", `{"type":"user","message":{"role":"user","content":"hi"}}`, true, KindUser},
		{"direct assistant", `{"type":"assistant","message":{"role":"assistant","content":[]}}`, true, KindAssistant},
		{"no type tag", `{"timestamp":"2024-01-01T00:00:00Z"}`, true, KindUnknown},
		{"unrecognized type", `{"type":"progress"}`, true, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := ParseLine([]byte(tt.line))
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.kind, e.Kind())
			}
		})
	}
}

func TestParseLineKeepsRaw(t *testing.T) {
	line := `{"type":"progress","step":3}`
	e, ok := ParseLine([]byte("  " + line + "\n"))
	assert.True(t, ok)
	assert.Equal(t, line, string(e.Raw))
}

func TestParseLineFields(t *testing.T) {
	line := `{"type":"metadata","timestamp":"2024-05-02T10:00:00Z","cwd":"/w","gitBranch":"fix/x","version":"1.0.24","requestId":"req_1"}`
	e, ok := ParseLine([]byte(line))
	assert.True(t, ok)
	assert.Equal(t, "2024-05-02T10:00:00Z", e.Timestamp)
	assert.Equal(t, "/w", e.Cwd)
	assert.Equal(t, "fix/x", e.GitBranch)
	assert.Equal(t, "1.0.24", e.Version)
	assert.Equal(t, "req_1", e.RequestID)
}
