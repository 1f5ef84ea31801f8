package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/tkohara/ccsm/internal/index"
)

type Result struct {
	SessionID   string
	Seq         int
	UpdatedAt   string
	Project     string
	Cwd         string
	Status      string
	Summary     string
	LastMessage string
	Snippet     string
	Role        string
	Rank        float64
}

type Options struct {
	Query   string
	Project string // "" = all, substring match on project dir
	Role    string // "" = all, "user", "assistant"
	Since   string // "" = no filter, e.g. "2024-01-01"
	Limit   int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 {
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// ListAll returns the newest sessions as results with no snippet, for
// the browse view.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 500
	}
	sessions, err := db.ListSessions(index.ListOptions{Project: opts.Project, Since: opts.Since, Limit: opts.Limit})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(sessions))
	for _, s := range sessions {
		results = append(results, Result{
			SessionID:   s.SessionID,
			Seq:         -1,
			UpdatedAt:   s.UpdatedAt,
			Project:     s.Project,
			Cwd:         s.Cwd,
			Status:      s.Status,
			Summary:     s.Summary,
			LastMessage: s.LastMessage,
			Snippet:     s.LastMessage,
		})
	}
	return results, nil
}

// Search runs a full-text query over indexed message text, keeping the
// best-ranked hit per session. CJK queries fall back to substring LIKE
// since the unicode61 tokenizer cannot segment them.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.SessionID] {
			continue
		}
		seen[r.SessionID] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

func buildFilters(opts Options) (conds []string, args []any) {
	if opts.Project != "" {
		conds = append(conds, "s.project LIKE ?")
		args = append(args, "%"+opts.Project+"%")
	}
	if opts.Role != "" {
		conds = append(conds, "m.role = ?")
		args = append(args, opts.Role)
	}
	if opts.Since != "" {
		conds = append(conds, "s.updated_at >= ?")
		args = append(args, opts.Since)
	}
	return conds, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []any{opts.Query}

	fc, fa := buildFilters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT
			m.session_id,
			m.seq,
			s.updated_at,
			s.project,
			s.cwd,
			s.summary,
			snippet(messages_fts, 0, '>>>', '<<<', '...', 40) as snip,
			m.role,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN sessions s ON m.session_id = s.session_id
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"m.text LIKE ?"}
	args := []any{"%" + opts.Query + "%"}

	fc, fa := buildFilters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT
			m.session_id,
			m.seq,
			s.updated_at,
			s.project,
			s.cwd,
			s.summary,
			m.text,
			m.role
		FROM messages m
		JOIN sessions s ON m.session_id = s.session_id
		WHERE %s
		ORDER BY s.updated_at DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.SessionID, &r.Seq, &r.UpdatedAt,
			&r.Project, &r.Cwd, &r.Summary,
			&fullText, &r.Role,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.SessionID, &r.Seq, &r.UpdatedAt,
			&r.Project, &r.Cwd, &r.Summary,
			&r.Snippet, &r.Role, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
