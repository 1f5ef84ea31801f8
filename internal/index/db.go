package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    session_id    TEXT PRIMARY KEY,
    project       TEXT NOT NULL DEFAULT '',
    file_path     TEXT NOT NULL,
    cwd           TEXT NOT NULL DEFAULT '',
    git_branch    TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'idle',
    created_at    TEXT NOT NULL DEFAULT '',
    updated_at    TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    last_message  TEXT NOT NULL DEFAULT '',
    summary       TEXT NOT NULL DEFAULT '',
    mtime         INTEGER NOT NULL DEFAULT 0,
    size          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    session_id TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    ts         TEXT NOT NULL DEFAULT '',
    role       TEXT NOT NULL,
    text       TEXT NOT NULL,
    PRIMARY KEY (session_id, seq)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    text,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	// schema version tracking for forced re-index
	db.Exec("CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)")
	d := &DB{db: db}
	d.migrateSchemaVersion()

	return d, nil
}

// schemaVersion should be bumped whenever normalization logic changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		// force re-index by resetting all session mtime/size to 0
		d.db.Exec("UPDATE sessions SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type FileState struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetFileState(sessionID string) (*FileState, error) {
	var st FileState
	err := d.db.QueryRow(
		"SELECT mtime, size FROM sessions WHERE session_id = ?",
		sessionID,
	).Scan(&st.Mtime, &st.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// AllSessionIDs returns the IDs of every session still backed by a
// live transcript. Archived sessions are excluded; their originals are
// gone from the projects root on purpose.
func (d *DB) AllSessionIDs() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT session_id FROM sessions WHERE status != 'archived'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (d *DB) DeleteSession(sessionID string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) SessionCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

type SessionRow struct {
	SessionID    string
	Project      string
	FilePath     string
	Cwd          string
	GitBranch    string
	Status       string
	CreatedAt    string
	UpdatedAt    string
	MessageCount int
	LastMessage  string
	Summary      string
}

const sessionCols = "session_id, project, file_path, cwd, git_branch, status, created_at, updated_at, message_count, last_message, summary"

func scanSession(row interface{ Scan(...any) error }) (SessionRow, error) {
	var s SessionRow
	err := row.Scan(
		&s.SessionID, &s.Project, &s.FilePath, &s.Cwd, &s.GitBranch,
		&s.Status, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount,
		&s.LastMessage, &s.Summary,
	)
	return s, err
}

func (d *DB) GetSession(sessionID string) (*SessionRow, error) {
	s, err := scanSession(d.db.QueryRow(
		"SELECT "+sessionCols+" FROM sessions WHERE session_id = ?",
		sessionID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListOptions filter the session listing.
type ListOptions struct {
	Project string
	Since   string // YYYY-MM-DD, matched against updated_at
	Limit   int
}

// ListSessions returns sessions sorted by update time, newest first.
func (d *DB) ListSessions(opts ListOptions) ([]SessionRow, error) {
	conditions := []string{"1=1"}
	var args []any

	if opts.Project != "" {
		conditions = append(conditions, "project LIKE ?")
		args = append(args, "%"+opts.Project+"%")
	}
	if opts.Since != "" {
		conditions = append(conditions, "updated_at >= ?")
		args = append(args, opts.Since)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM sessions WHERE %s ORDER BY updated_at DESC",
		sessionCols, strings.Join(conditions, " AND "),
	)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

type MessageRow struct {
	SessionID string
	Seq       int
	Ts        string
	Role      string
	Text      string
}

func (d *DB) GetMessages(sessionID string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT session_id, seq, ts, role, text FROM messages WHERE session_id = ? ORDER BY seq",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.SessionID, &m.Seq, &m.Ts, &m.Role, &m.Text); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (d *DB) UpdateStatus(sessionID, status string) error {
	_, err := d.db.Exec(
		"UPDATE sessions SET status = ? WHERE session_id = ?",
		status, sessionID,
	)
	return err
}

// MarkArchived points a session at its compressed transcript. The
// mtime/size state is cleared so a restored original gets reindexed.
func (d *DB) MarkArchived(sessionID, archivePath string) error {
	_, err := d.db.Exec(
		"UPDATE sessions SET status = 'archived', file_path = ?, mtime = 0, size = 0 WHERE session_id = ?",
		archivePath, sessionID,
	)
	return err
}
