package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureTranscript = `{"type":"metadata","timestamp":"2024-01-01T00:00:00Z","cwd":"/tmp/proj","gitBranch":"main"}
{"type":"user","timestamp":"2024-01-01T00:00:01Z","message":{"role":"user","content":"fix bug"}}
{"type":"assistant","timestamp":"2024-01-01T00:00:05Z","message":{"role":"assistant","content":[{"type":"text","text":"Fixed."}]}}
{"type":"summary","summary":"Bug fix session"}`

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeSession(t *testing.T, root, id, content string) string {
	t.Helper()
	dir := filepath.Join(root, "-home-u-proj")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, id+".jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIndexAll(t *testing.T) {
	db := testDB(t)
	root := t.TempDir()
	writeSession(t, root, "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", fixtureTranscript)

	stats, err := IndexAll(db, root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scanned)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 0, stats.Errors)

	s, err := db.GetSession("0f79205f-5217-48cf-a5e9-e2d10c2b0dcd")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "/tmp/proj", s.Cwd)
	assert.Equal(t, "main", s.GitBranch)
	assert.Equal(t, 2, s.MessageCount)
	assert.Equal(t, "fix bug", s.LastMessage)
	assert.Equal(t, "Bug fix session", s.Summary)

	msgs, err := db.GetMessages(s.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "fix bug", msgs[0].Text)
}

func TestIndexAllSkipsUnchanged(t *testing.T) {
	db := testDB(t)
	root := t.TempDir()
	writeSession(t, root, "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", fixtureTranscript)

	_, err := IndexAll(db, root)
	require.NoError(t, err)

	stats, err := IndexAll(db, root)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 1, stats.Skipped)
}

func TestIndexAllPrunesDeleted(t *testing.T) {
	db := testDB(t)
	root := t.TempDir()
	path := writeSession(t, root, "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", fixtureTranscript)

	_, err := IndexAll(db, root)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	stats, err := IndexAll(db, root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pruned)

	n, err := db.SessionCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestIndexAllKeepsArchivedSessions(t *testing.T) {
	db := testDB(t)
	root := t.TempDir()
	path := writeSession(t, root, "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", fixtureTranscript)

	_, err := IndexAll(db, root)
	require.NoError(t, err)

	archivePath := filepath.Join(t.TempDir(), "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd.jsonl.zst")
	require.NoError(t, db.MarkArchived("0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", archivePath))
	require.NoError(t, os.Remove(path))

	stats, err := IndexAll(db, root)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Pruned)

	s, err := db.GetSession("0f79205f-5217-48cf-a5e9-e2d10c2b0dcd")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "archived", s.Status)
	assert.Equal(t, archivePath, s.FilePath)
}

func TestListSessionsFilters(t *testing.T) {
	db := testDB(t)
	root := t.TempDir()
	writeSession(t, root, "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", fixtureTranscript)

	newer := `{"type":"metadata","timestamp":"2025-06-01T00:00:00Z","cwd":"/tmp/other"}
{"type":"user","timestamp":"2025-06-01T00:00:01Z","message":{"role":"user","content":"newer session"}}`
	otherDir := filepath.Join(root, "-home-u-other")
	require.NoError(t, os.MkdirAll(otherDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(otherDir, "74b00b13-1262-43b4-8f27-b7ad5b1a26d1.jsonl"), []byte(newer), 0o644))

	_, err := IndexAll(db, root)
	require.NoError(t, err)

	all, err := db.ListSessions(ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "74b00b13-1262-43b4-8f27-b7ad5b1a26d1", all[0].SessionID, "newest first")

	since, err := db.ListSessions(ListOptions{Since: "2025-01-01"})
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "74b00b13-1262-43b4-8f27-b7ad5b1a26d1", since[0].SessionID)

	proj, err := db.ListSessions(ListOptions{Project: "u-proj"})
	require.NoError(t, err)
	require.Len(t, proj, 1)

	limited, err := db.ListSessions(ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestIndexSessionReplacesOldRows(t *testing.T) {
	db := testDB(t)
	root := t.TempDir()
	path := writeSession(t, root, "0f79205f-5217-48cf-a5e9-e2d10c2b0dcd", fixtureTranscript)

	_, err := IndexAll(db, root)
	require.NoError(t, err)

	extended := fixtureTranscript + "\n" + `{"type":"user","timestamp":"2024-01-01T00:01:00Z","message":{"role":"user","content":"also update the docs"}}`
	require.NoError(t, os.WriteFile(path, []byte(extended), 0o644))

	stats, err := IndexAll(db, root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)

	s, err := db.GetSession("0f79205f-5217-48cf-a5e9-e2d10c2b0dcd")
	require.NoError(t, err)
	assert.Equal(t, 3, s.MessageCount)
	assert.Equal(t, "also update the docs", s.LastMessage)
}
