package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkohara/ccsm/internal/archive"
	"github.com/tkohara/ccsm/internal/config"
	"github.com/tkohara/ccsm/internal/index"
	"github.com/tkohara/ccsm/internal/render"
	"github.com/tkohara/ccsm/internal/transcript"
)

// readMessages expands a transcript from disk, decompressing archived
// transcripts transparently.
func readMessages(path string) ([]transcript.Message, error) {
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

// lookupSession returns the indexed row for a session ID, failing with a
// hint when the session is unknown.
func lookupSession(db *index.DB, sessionID string) (*index.SessionRow, error) {
	session, err := db.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s not found (run 'ccsm index' first?)", sessionID)
	}
	return session, nil
}

func showCmd() *cobra.Command {
	var hitSeq int
	var context, width int
	var query string
	var showMeta bool

	cmd := &cobra.Command{
		Use:   "show <sessionID>",
		Short: "Print a conversation with context around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			session, err := lookupSession(db, args[0])
			if err != nil {
				return err
			}

			msgs, err := readMessages(session.FilePath)
			if err != nil {
				return err
			}

			header := session.SessionID + " [" + session.Cwd + "]"
			out, _ := render.Conversation(header, msgs, render.Options{
				HitSeq:   hitSeq,
				Context:  context,
				Width:    width,
				ShowMeta: showMeta,
				Query:    query,
			})

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hitSeq, "hit", -1, "Message sequence to highlight")
	cmd.Flags().IntVar(&context, "context", -1, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().BoolVar(&showMeta, "meta", false, "Show meta message placeholders")

	return cmd
}
