package discover

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTranscript = `{"type":"metadata","timestamp":"2024-01-01T00:00:00Z","cwd":"/tmp/proj"}
{"type":"user","timestamp":"2024-01-01T00:00:01Z","message":{"role":"user","content":"hello"}}`

func writeTranscript(t *testing.T, root, project, id string) string {
	t.Helper()
	dir := filepath.Join(root, project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, id+".jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleTranscript), 0o644))
	return path
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTranscript(t, root, "-home-u-proj", "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd")
	writeTranscript(t, root, "-home-u-other", "74b00b13-1262-43b4-8f27-b7ad5b1a26d1")

	// not sessions: bad stem, index file, subagent transcript
	writeTranscript(t, root, "-home-u-proj", "notes")
	require.NoError(t, os.WriteFile(filepath.Join(root, "-home-u-proj", "sessions-index.jsonl"), []byte("{}"), 0o644))
	subDir := filepath.Join(root, "-home-u-proj", "subagents")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "9f79205f-5217-48cf-a5e9-e2d10c2b0dcd.jsonl"), []byte("{}"), 0o644))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.NotEmpty(t, f.Project)
		assert.NotEmpty(t, f.SessionID)
	}
}

func TestScanMissingRoot(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanSortsNewestFirst(t *testing.T) {
	root := t.TempDir()
	older := writeTranscript(t, root, "p", "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd")
	newer := writeTranscript(t, root, "p", "74b00b13-1262-43b4-8f27-b7ad5b1a26d1")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, newer, files[0].Path)
	assert.Equal(t, older, files[1].Path)
}

func TestFindSession(t *testing.T) {
	root := t.TempDir()
	path := writeTranscript(t, root, "p", "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd")

	f, found, err := FindSession(root, "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, path, f.Path)

	_, found, err = FindSession(root, "ffffffff-ffff-ffff-ffff-ffffffffffff")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSummarizeAll(t *testing.T) {
	root := t.TempDir()
	writeTranscript(t, root, "p", "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd")
	writeTranscript(t, root, "p", "74b00b13-1262-43b4-8f27-b7ad5b1a26d1")

	files, err := Scan(root)
	require.NoError(t, err)

	sums := SummarizeAll(files)
	require.Len(t, sums, 2)
	for _, s := range sums {
		assert.Equal(t, 1, s.Summary.MessageCount)
		assert.Equal(t, "/tmp/proj", s.Summary.Cwd)
		assert.Equal(t, s.File.SessionID, s.Summary.ID)
	}
}
