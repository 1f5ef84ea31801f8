package index

import (
	"fmt"
	"os"

	"github.com/tkohara/ccsm/internal/discover"
	"github.com/tkohara/ccsm/internal/transcript"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// IndexAll scans root for transcripts and brings the index up to date.
// Unchanged files (same mtime and size) are skipped; sessions whose
// files no longer exist are pruned.
func IndexAll(db *DB, root string) (Stats, error) {
	var stats Stats

	files, err := discover.Scan(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which sessions we see, for pruning
	seen := make(map[string]struct{})

	for _, fi := range files {
		seen[fi.SessionID] = struct{}{}

		needs, err := needsUpdate(db, fi)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		if err := indexFile(db, fi); err != nil {
			stats.Errors++
			fmt.Fprintf(os.Stderr, "  WARN: index %s: %v\n", fi.Path, err)
			continue
		}
		stats.Updated++
	}

	pruned, err := pruneSessions(db, seen)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func needsUpdate(db *DB, fi discover.File) (bool, error) {
	st, err := db.GetFileState(fi.SessionID)
	if err != nil {
		return false, err
	}
	if st == nil {
		return true, nil // new session
	}
	return st.Mtime != fi.Mtime || st.Size != fi.Size, nil
}

func indexFile(db *DB, fi discover.File) error {
	sum, err := transcript.SummarizeFile(fi.Path)
	if err != nil {
		return err
	}
	msgs, err := transcript.ExpandFile(fi.Path)
	if err != nil {
		return err
	}
	return IndexSession(db, fi, sum, msgs)
}

// IndexSession replaces the stored rows for one session.
func IndexSession(db *DB, fi discover.File, sum transcript.SessionSummary, msgs []transcript.Message) error {
	// delete old data first so the FTS triggers see every row change
	if err := db.DeleteSession(sum.ID); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (session_id, project, file_path, cwd, git_branch, status, created_at, updated_at, message_count, last_message, summary, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID,
		fi.Project,
		fi.Path,
		sum.Cwd,
		sum.GitBranch,
		sum.Status,
		sum.Timestamp,
		sum.UpdatedAt,
		sum.MessageCount,
		sum.LastMessage,
		sum.Summary,
		fi.Mtime,
		fi.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (session_id, seq, ts, role, text) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	seq := 0
	for _, m := range msgs {
		text := m.Text()
		if text == "" {
			continue // meta placeholders and tool payloads are not searchable
		}
		if _, err := stmt.Exec(sum.ID, seq, m.Timestamp, m.Role, text); err != nil {
			return err
		}
		seq++
	}

	return tx.Commit()
}

func pruneSessions(db *DB, seen map[string]struct{}) (int, error) {
	all, err := db.AllSessionIDs()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for id := range all {
		if _, ok := seen[id]; !ok {
			if err := db.DeleteSession(id); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
