package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkohara/ccsm/internal/archive"
	"github.com/tkohara/ccsm/internal/config"
	"github.com/tkohara/ccsm/internal/index"
	"github.com/tkohara/ccsm/internal/transcript"
)

func archiveCmd() *cobra.Command {
	var olderThan int

	cmd := &cobra.Command{
		Use:   "archive [sessionID]",
		Short: "Compress cold sessions into the archive directory",
		Long:  `Compresses a session's transcript with zstd and moves it to the archive directory. Archived sessions stay indexed and remain searchable, viewable, and exportable. Pass a session ID, or --older-than N to archive every session idle for more than N days.`,
		Args:  cobra.MaximumNArgs(1),
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

			if len(args) == 1 {
				session, err := lookupSession(db, args[0])
				if err != nil {
					return err
				}
				return archiveOne(db, cfg, session)
			}

			if olderThan <= 0 {
				return fmt.Errorf("pass a session ID or --older-than N")
			}

			sessions, err := db.ListSessions(index.ListOptions{})
			if err != nil {
				return err
			}

			cutoff := time.Now().AddDate(0, 0, -olderThan)
			archived := 0
			for _, s := range sessions {
				if s.Status == transcript.StatusArchived {
					continue
				}
				updated := transcript.ParseTimestamp(s.UpdatedAt)
				if updated.IsZero() || !updated.Before(cutoff) {
					continue
				}
				if err := archiveOne(db, cfg, &s); err != nil {
					fmt.Fprintf(os.Stderr, "  WARN: archive %s: %v\n", s.SessionID, err)
					continue
				}
				archived++
			}

			fmt.Fprintf(os.Stderr, "Archived %d sessions.\n", archived)
			return nil
		},
	}

	cmd.Flags().IntVar(&olderThan, "older-than", 0, "Archive every session idle for more than N days")

	return cmd
}

// archiveOne compresses one session, removes the original, and repoints
// the index at the archive.
func archiveOne(db *index.DB, cfg *config.Config, session *index.SessionRow) error {
	if session.Status == transcript.StatusArchived {
		return fmt.Errorf("already archived")
	}

	archivePath, err := archive.Compress(session.FilePath, cfg.ArchiveDir)
	if err != nil {
		return err
	}

	if err := db.MarkArchived(session.SessionID, archivePath); err != nil {
		return err
	}

	// remove the original only after the index points at the archive
	if err := os.Remove(session.FilePath); err != nil {
		fmt.Fprintf(os.Stderr, "  WARN: remove %s: %v\n", session.FilePath, err)
	}

	fmt.Fprintf(os.Stderr, "Archived %s -> %s\n", session.SessionID, archivePath)
	return nil
}
