package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkohara/ccsm/internal/config"
	"github.com/tkohara/ccsm/internal/discover"
	"github.com/tkohara/ccsm/internal/index"
	"github.com/tkohara/ccsm/internal/resume"
	"github.com/tkohara/ccsm/internal/transcript"
	"github.com/tkohara/ccsm/internal/tui"
)

// runOutcome acts on what the user picked in the TUI: launch the
// session or copy its resume command.
func runOutcome(ctx context.Context, cfg *config.Config, outcome tui.Outcome) error {
	if outcome.Action == tui.ActionNone {
		return nil
	}

	target := resume.Target{
		SessionID: outcome.Result.SessionID,
		Cwd:       outcome.Result.Cwd,
	}

	if outcome.Action == tui.ActionCopy {
		return resume.CopyCommand(target, cfg.ClaudeBin)
	}

	return resume.Resume(ctx, resume.NewOSRunner(), target, resume.Options{
		ClaudeBin: cfg.ClaudeBin,
		TmuxBin:   cfg.TmuxBin,
	})
}

// resumeTarget resolves a session ID to its working directory, falling
// back to a disk scan when the session has not been indexed yet.
func resumeTarget(db *index.DB, cfg *config.Config, sessionID string) (resume.Target, error) {
	session, err := db.GetSession(sessionID)
	if err != nil {
		return resume.Target{}, err
	}
	if session != nil {
		return resume.Target{SessionID: session.SessionID, Cwd: session.Cwd}, nil
	}

	fi, found, err := discover.FindSession(cfg.ProjectsRoot, sessionID)
	if err != nil {
		return resume.Target{}, err
	}
	if !found {
		return resume.Target{}, fmt.Errorf("session %s not found", sessionID)
	}
	sum, err := transcript.SummarizeFile(fi.Path)
	if err != nil {
		return resume.Target{}, err
	}
	return resume.Target{SessionID: sessionID, Cwd: sum.Cwd}, nil
}

func resumeCmd() *cobra.Command {
	var printOnly, copyOnly bool

	cmd := &cobra.Command{
		Use:   "resume <sessionID>",
		Short: "Reattach to a session with 'claude --resume'",
		Long:  `Launches the assistant for the given session. Inside tmux a new window opens in the session's working directory; outside tmux a new tmux session is created and attached. Without tmux the assistant runs in the current terminal.`,
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

			target, err := resumeTarget(db, cfg, args[0])
			if err != nil {
				return err
			}

			if copyOnly {
				return resume.CopyCommand(target, cfg.ClaudeBin)
			}

			return resume.Resume(cmd.Context(), resume.NewOSRunner(), target, resume.Options{
				ClaudeBin: cfg.ClaudeBin,
				TmuxBin:   cfg.TmuxBin,
				PrintOnly: printOnly,
			})
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the resume command instead of launching")
	cmd.Flags().BoolVar(&copyOnly, "copy", false, "Copy the resume command to the clipboard")

	return cmd
}
