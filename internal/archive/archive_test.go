package archive

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkohara/ccsm/internal/transcript"
)

const fixture = `{"type":"metadata","timestamp":"2024-01-01T00:00:00Z","cwd":"/tmp/proj"}
{"type":"user","timestamp":"2024-01-01T00:00:01Z","message":{"role":"user","content":"hello"}}`

func TestCompressAndOpen(t *testing.T) {
	src := filepath.Join(t.TempDir(), "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd.jsonl")
	require.NoError(t, os.WriteFile(src, []byte(fixture), 0o644))

	archiveDir := t.TempDir()
	dest, err := Compress(src, archiveDir)
	require.NoError(t, err)
	assert.Equal(t, Path("0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", archiveDir), dest)
	assert.True(t, IsArchive(dest))

	rc, err := Open(dest)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, fixture, string(data))
}

func TestOpenPlainFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "x.jsonl")
	require.NoError(t, os.WriteFile(src, []byte(fixture), 0o644))

	rc, err := Open(src)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, fixture, string(data))
}

func TestArchivedTranscriptStillSummarizes(t *testing.T) {
	src := filepath.Join(t.TempDir(), "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd.jsonl")
	require.NoError(t, os.WriteFile(src, []byte(fixture), 0o644))

	dest, err := Compress(src, t.TempDir())
	require.NoError(t, err)

	rc, err := Open(dest)
	require.NoError(t, err)
	defer rc.Close()

	sum, err := transcript.Summarize(rc, "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.MessageCount)
	assert.Equal(t, "hello", sum.LastMessage)
}

func TestCompressMissingSource(t *testing.T) {
	_, err := Compress(filepath.Join(t.TempDir(), "nope.jsonl"), t.TempDir())
	assert.Error(t, err)
}
