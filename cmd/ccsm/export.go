package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkohara/ccsm/internal/archive"
	"github.com/tkohara/ccsm/internal/config"
	"github.com/tkohara/ccsm/internal/export"
	"github.com/tkohara/ccsm/internal/index"
	"github.com/tkohara/ccsm/internal/transcript"
)

// readSummary folds a transcript from disk into a session summary,
// decompressing archived transcripts transparently.
func readSummary(path, sessionID string) (transcript.SessionSummary, error) {
	if archive.IsArchive(path) {
		r, err := archive.Open(path)
		if err != nil {
			return transcript.SessionSummary{}, err
		}
		defer r.Close()
		sum, err := transcript.Summarize(r, sessionID)
		if err != nil {
			return transcript.SessionSummary{}, err
		}
		sum.Status = transcript.StatusArchived
		return sum, nil
	}
	return transcript.SummarizeFile(path)
}

func exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <sessionID>",
		Short: "Export a session as markdown, json, jsonl, or yaml",
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

			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
			}

			sum, err := readSummary(session.FilePath, session.SessionID)
			if err != nil {
				return err
			}
			msgs, err := readMessages(session.FilePath)
			if err != nil {
				return err
			}

			doc := &export.Session{
				Summary:  sum,
				Messages: msgs,
				FilePath: session.FilePath,
			}

			if output == "-" {
				return exporter.Export(doc, os.Stdout)
			}

			dest := output
			if dest == "" {
				dest = export.Filename(session.SessionID, exporter)
			}

			f, err := os.Create(dest)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := exporter.Export(doc, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Exported %s to %s\n", session.SessionID, dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "Output format (md/json/jsonl/yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file ('-' for stdout, default <sessionID>.<ext>)")

	return cmd
}
