package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tkohara/ccsm/internal/archive"
	"github.com/tkohara/ccsm/internal/index"
	"github.com/tkohara/ccsm/internal/render"
	"github.com/tkohara/ccsm/internal/search"
	"github.com/tkohara/ccsm/internal/transcript"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	sessionID string
	seq       int
	content   string
	hitLine   int
	err       error
}

// loadPreviewCmd returns a tea.Cmd that renders the conversation preview
// async, reading the transcript file directly.
func loadPreviewCmd(db *index.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		session, err := db.GetSession(r.SessionID)
		if err == nil && session == nil {
			err = errSessionGone(r.SessionID)
		}

		var content string
		hitLine := -1
		if err == nil {
			var msgs []transcript.Message
			msgs, err = expandTranscript(session.FilePath)
			if err == nil {
				header := session.SessionID + " [" + session.Cwd + "]"
				content, hitLine = render.Conversation(header, msgs, render.Options{
					HitSeq:  r.Seq,
					Context: -1,
					Width:   width,
					Query:   query,
				})
			}
		}

		return previewRenderedMsg{
			sessionID: r.SessionID,
			seq:       r.Seq,
			content:   content,
			hitLine:   hitLine,
			err:       err,
		}
	}
}

// expandTranscript reads a transcript from disk, decompressing archived
// ones transparently.
func expandTranscript(path string) ([]transcript.Message, error) {
	if archive.IsArchive(path) {
		r, err := archive.Open(path)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return transcript.Expand(r)
	}
	return transcript.ExpandFile(path)
}

type errSessionGone string

func (e errSessionGone) Error() string { return "session not found: " + string(e) }
