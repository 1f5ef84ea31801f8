package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tkohara/ccsm/internal/config"
	"github.com/tkohara/ccsm/internal/index"
	"github.com/tkohara/ccsm/internal/search"
	"github.com/tkohara/ccsm/internal/tui"
)

func listCmd() *cobra.Command {
	var project, since string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all sessions sorted by update time",
		Long:  `Opens a TUI panel showing all indexed sessions sorted by update time (newest first). Type to filter. When stdout is not a terminal, prints TSV for fzf or scripts instead.`,
		Args:  cobra.NoArgs,
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

			// Auto-update index before listing
			index.IndexAll(db, cfg.ProjectsRoot)

			opts := search.Options{
				Project: project,
				Since:   since,
				Limit:   limit,
			}

			if !asJSON && term.IsTerminal(int(os.Stdout.Fd())) {
				outcome, err := tui.RunList(db, opts)
				if err != nil {
					return err
				}
				return runOutcome(cmd.Context(), cfg, outcome)
			}

			sessions, err := db.ListSessions(index.ListOptions{
				Project: project,
				Since:   since,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(sessions)
			}

			for _, s := range sessions {
				title := s.Summary
				if title == "" {
					title = s.LastMessage
				}
				title = strings.ReplaceAll(title, "\t", " ")
				title = strings.ReplaceAll(title, "\n", " ")
				fmt.Printf("%s\t%s\t%s\t%s\t%d\t%s\n",
					s.SessionID,
					s.UpdatedAt,
					s.Project,
					s.Status,
					s.MessageCount,
					title,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Filter by project directory substring")
	cmd.Flags().StringVar(&since, "since", "", "Filter sessions updated since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print sessions as JSON instead of opening the TUI")

	return cmd
}
