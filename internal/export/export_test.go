package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tkohara/ccsm/internal/transcript"
)

const fixture = `{"type":"metadata","timestamp":"2024-01-01T00:00:00Z","cwd":"/tmp/proj","gitBranch":"main"}
{"type":"user","timestamp":"2024-01-01T00:00:01Z","message":{"role":"user","content":"fix bug"}}
{"type":"assistant","timestamp":"2024-01-01T00:00:05Z","message":{"role":"assistant","content":[{"type":"text","text":"On it."},{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"go test ./..."}}]}}
{"type":"user","timestamp":"2024-01-01T00:00:09Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"ok"}]}}
{"type":"whatever-future-kind","payload":123}
{"type":"summary","summary":"Bug fix session"}`

func fixtureSession(t *testing.T) *Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	sum, err := transcript.SummarizeFile(path)
	require.NoError(t, err)
	msgs, err := transcript.ExpandFile(path)
	require.NoError(t, err)

	return &Session{Summary: sum, Messages: msgs, FilePath: path}
}

func TestNewExporter(t *testing.T) {
	for _, format := range []string{"md", "markdown", "json", "jsonl", "yaml"} {
		e, err := NewExporter(format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, e.Extension())
	}

	_, err := NewExporter("pdf")
	assert.Error(t, err)
}

func TestTitleRole(t *testing.T) {
	assert.Equal(t, "System", titleRole("system"))
	assert.Equal(t, "Unknown", titleRole(""))
	assert.Equal(t, "Éditeur", titleRole("éditeur"))
}

func TestFilename(t *testing.T) {
	for format, want := range map[string]string{
		"md":    "0f79205f.md",
		"json":  "0f79205f.json",
		"jsonl": "0f79205f.jsonl",
		"yaml":  "0f79205f.yaml",
	} {
		e, err := NewExporter(format)
		require.NoError(t, err, format)
		assert.Equal(t, want, Filename("0f79205f", e))
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	e := &MarkdownExporter{}
	require.NoError(t, e.Export(fixtureSession(t), &buf))
	out := buf.String()

	assert.Contains(t, out, "# Session 0f79205f")
	assert.Contains(t, out, "> Bug fix session")
	assert.Contains(t, out, "## User (2024-01-01T00:00:01Z)")
	assert.Contains(t, out, "fix bug")
	// tool payloads are rendered in the markdown export, unlike previews
	assert.Contains(t, out, "**Tool: Bash**")
	assert.Contains(t, out, "go test ./...")
	assert.Contains(t, out, "**Tool result:**")
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	e := &JSONExporter{}
	require.NoError(t, e.Export(fixtureSession(t), &buf))

	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "/tmp/proj", doc.Session.Cwd)
	assert.Equal(t, 3, doc.Session.MessageCount)
	assert.Equal(t, "fix bug", doc.Session.LastMessage)
	require.Len(t, doc.Messages, 3)
	assert.Equal(t, "On it.", doc.Messages[1].Text, "tool blocks excluded from flattened text")
}

func TestJSONLExportKeepsUnclassifiedLines(t *testing.T) {
	var buf bytes.Buffer
	e := &JSONLExporter{}
	require.NoError(t, e.Export(fixtureSession(t), &buf))

	assert.Contains(t, buf.String(), "whatever-future-kind")
	assert.Equal(t, 6, len(strings.Split(strings.TrimSpace(buf.String()), "\n")))
}

func TestYAMLExport(t *testing.T) {
	var buf bytes.Buffer
	e := &YAMLExporter{}
	require.NoError(t, e.Export(fixtureSession(t), &buf))

	var doc document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Bug fix session", doc.Session.Summary)
	assert.Equal(t, "main", doc.Session.GitBranch)
}
