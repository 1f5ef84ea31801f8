package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tkohara/ccsm/internal/config"
	"github.com/tkohara/ccsm/internal/discover"
	"github.com/tkohara/ccsm/internal/index"
	"github.com/tkohara/ccsm/internal/transcript"
)

var (
	markOK   = color.New(color.FgGreen).Sprint("OK")
	markFail = color.New(color.FgRed).Sprint("FAIL")
	markWarn = color.New(color.FgYellow).Sprint("WARN")
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify roots, DB, FTS5, binaries, and show stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			// check roots
			fmt.Println("=== Roots ===")
			checkDir("Projects", cfg.ProjectsRoot)
			checkDir("Archive", cfg.ArchiveDir)

			// scan file counts
			fmt.Println("\n=== File Scan ===")
			files, err := discover.Scan(cfg.ProjectsRoot)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Transcript files: %d\n", len(files))
				active := 0
				for _, s := range discover.SummarizeAll(files) {
					if s.Summary.Status == transcript.StatusActive {
						active++
					}
				}
				fmt.Printf("  Active sessions:  %d\n", active)
			}

			// check binaries
			fmt.Println("\n=== Binaries ===")
			checkBinary("claude", cfg.ClaudeBin)
			checkBinary("tmux", cfg.TmuxBin)

			// check DB
			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Printf("  Status: %s not found (run 'ccsm index' first)\n", markWarn)
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			sessionCount, err := db.SessionCount()
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}

			messageCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}

			fmt.Printf("  Sessions: %d\n", sessionCount)
			fmt.Printf("  Messages: %d\n", messageCount)

			// check FTS5
			fmt.Println("\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5: %s %v\n", markFail, err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == messageCount {
					fmt.Printf("  Status: %s (synced)\n", markOK)
				} else {
					fmt.Printf("  Status: %s mismatch (messages=%d, fts=%d)\n", markFail, messageCount, ftsCount)
				}
			}

			// check DB file size
			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (%s not found)\n", name, path, markWarn)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (%s not a directory)\n", name, path, markFail)
	} else {
		fmt.Printf("  %s: %s (%s)\n", name, path, markOK)
	}
}

func checkBinary(name, bin string) {
	if path, err := exec.LookPath(bin); err != nil {
		fmt.Printf("  %s: %s (%s not in PATH)\n", name, bin, markWarn)
	} else {
		fmt.Printf("  %s: %s (%s)\n", name, path, markOK)
	}
}
