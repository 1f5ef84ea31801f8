package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tkohara/ccsm/internal/config"
	"github.com/tkohara/ccsm/internal/index"
	"github.com/tkohara/ccsm/internal/search"
	"github.com/tkohara/ccsm/internal/tui"
)

var (
	colorDate    = color.New(color.Faint)
	colorProject = color.New(color.FgBlue, color.Bold)
	colorHit     = color.New(color.FgRed, color.Bold)
)

func colorizeSnippet(snippet string) string {
	for {
		start := strings.Index(snippet, ">>>")
		if start < 0 {
			break
		}
		end := strings.Index(snippet[start:], "<<<")
		if end < 0 {
			break
		}
		hit := snippet[start+3 : start+end]
		snippet = snippet[:start] + colorHit.Sprint(hit) + snippet[start+end+3:]
	}
	return snippet
}

func searchCmd() *cobra.Command {
	var project, role, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed sessions",
		Long: `Search indexed session messages using FTS5. When stdout is a terminal
an interactive TUI opens with the query applied. Piped output is TSV:
  sessionID, seq, updatedAt, project, summary, snippet

Recommended shell function (add to .zshrc):
  ccsf() {
    ccsm search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'ccsm show {1} --hit {2} --context 5' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(ccsm resume {1})'
  }`,
		Args: cobra.ExactArgs(1),
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

			// Auto-update index before searching
			index.IndexAll(db, cfg.ProjectsRoot)

			opts := search.Options{
				Project: project,
				Role:    role,
				Since:   since,
				Limit:   limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				outcome, err := tui.RunSearch(db, args[0], opts)
				if err != nil {
					return err
				}
				return runOutcome(cmd.Context(), cfg, outcome)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				snippet = strings.ReplaceAll(snippet, "\n", " ")
				snippet = colorizeSnippet(snippet)
				summary := strings.ReplaceAll(r.Summary, "\t", " ")
				summary = strings.ReplaceAll(summary, "\n", " ")
				// first two fields (sessionID, seq) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s\t%s\t%s\t%s\n",
					r.SessionID,
					r.Seq,
					colorDate.Sprint(r.UpdatedAt),
					colorProject.Sprint(r.Project),
					summary,
					snippet,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Filter by project directory substring")
	cmd.Flags().StringVar(&role, "role", "", "Filter by role (user/assistant)")
	cmd.Flags().StringVar(&since, "since", "", "Filter sessions updated since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
