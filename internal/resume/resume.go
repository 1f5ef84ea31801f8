// Package resume reattaches to a prior session by launching the
// coding-assistant CLI, preferring a tmux window/session so the shell
// the user invoked ccsm from stays usable.
package resume

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
)

// Target identifies the session to reattach to.
type Target struct {
	SessionID string
	Cwd       string
}

// Options configure the resume launch.
type Options struct {
	ClaudeBin string
	TmuxBin   string
	// PrintOnly skips launching and just prints the resume command.
	PrintOnly bool
}

// Resume launches the assistant for the target session. Inside tmux a
// new window is opened; outside, a detached tmux session is created and
// attached. Without tmux the assistant runs in the current terminal.
func Resume(ctx context.Context, r Runner, target Target, opts Options) error {
	if target.SessionID == "" {
		return fmt.Errorf("no session id")
	}
	if opts.ClaudeBin == "" {
		opts.ClaudeBin = "claude"
	}
	if opts.TmuxBin == "" {
		opts.TmuxBin = "tmux"
	}

	if opts.PrintOnly {
		fmt.Println(Command(target, opts.ClaudeBin))
		return nil
	}

	if !r.LookPath(opts.ClaudeBin) {
		return fmt.Errorf("%s not found in PATH", opts.ClaudeBin)
	}

	dir := target.Cwd
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			dir = "" // project directory is gone, start wherever we are
		}
	}

	if !r.LookPath(opts.TmuxBin) {
		return r.RunInteractive(ctx, dir, opts.ClaudeBin, "--resume", target.SessionID)
	}

	if os.Getenv("TMUX") != "" {
		// already inside tmux: open the session in a new window
		args := []string{"new-window", "-n", windowName(target.SessionID)}
		if dir != "" {
			args = append(args, "-c", dir)
		}
		args = append(args, opts.ClaudeBin, "--resume", target.SessionID)
		_, err := r.Run(ctx, opts.TmuxBin, args...)
		return err
	}

	// outside tmux: create a session and attach to it
	name := windowName(target.SessionID)
	args := []string{"new-session", "-s", name}
	if dir != "" {
		args = append(args, "-c", dir)
	}
	args = append(args, opts.ClaudeBin, "--resume", target.SessionID)
	return r.RunInteractive(ctx, "", opts.TmuxBin, args...)
}

// Command builds the shell command that resumes the target session.
func Command(target Target, claudeBin string) string {
	if claudeBin == "" {
		claudeBin = "claude"
	}
	cmd := fmt.Sprintf("%s --resume %s", claudeBin, target.SessionID)
	if target.Cwd != "" {
		return fmt.Sprintf("cd %s && %s", target.Cwd, cmd)
	}
	return cmd
}

// CopyCommand puts the resume command on the clipboard, printing it
// instead when no clipboard is available.
func CopyCommand(target Target, claudeBin string) error {
	cmd := Command(target, claudeBin)
	if err := clipboard.WriteAll(cmd); err != nil {
		fmt.Printf("%s\n", cmd)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", cmd)
	return nil
}

func windowName(sessionID string) string {
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}
	return "ccsm-" + short
}
