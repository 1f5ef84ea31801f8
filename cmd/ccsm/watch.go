package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkohara/ccsm/internal/config"
	"github.com/tkohara/ccsm/internal/index"
	"github.com/tkohara/ccsm/internal/watch"
)

func watchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the projects root and reindex on changes",
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", cfg.ProjectsRoot)

			reindex := func() error {
				stats, err := index.IndexAll(db, cfg.ProjectsRoot)
				if err != nil {
					fmt.Fprintf(os.Stderr, "reindex: %v\n", err)
					return err
				}
				if stats.Updated > 0 || stats.Pruned > 0 {
					fmt.Fprintf(os.Stderr, "%s %s\n", time.Now().Format("15:04:05"), stats)
				}
				return nil
			}

			// catch up before watching
			reindex()

			err = watch.Run(ctx, cfg.ProjectsRoot, debounce, reindex)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Delay after the last change before reindexing")

	return cmd
}
