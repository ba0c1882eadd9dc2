package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/pkg/adapters/statefile"
	stikiesync "github.com/stikie/stikie/pkg/sync"
)

// watchCmd runs the engine as a long-lived process: it probes
// connectivity, reacts to sign-in/out events, and reloads the board
// whenever another process rewrites the state files.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the sync engine in the foreground",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()
		if err := a.requireSync(); err != nil {
			fatal("Cannot watch", err)
		}

		changes, err := a.files.Watch(ctx, "*.json")
		if err != nil {
			fatal("Failed to watch state directory", err)
		}

		go a.reconciler.Run(ctx, a.session.Sessions())

		if a.remote != nil {
			monitor := stikiesync.NewMonitor(a.remote, a.cfg.Sync.ProbeInterval.Std(), slog.Default())
			go monitor.Run(ctx)
			go func() {
				for online := range monitor.Changes() {
					a.reconciler.OnConnectivityChange(ctx, online)
				}
			}()
		}

		fmt.Printf("Watching %s. Press Ctrl-C to stop.\n", a.cfg.StateDir)
		for ev := range changes {
			if ev.File != statefile.NotesFile {
				continue
			}
			if err := a.board.Reload(); err != nil {
				slog.Default().Warn("failed to reload board", "error", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
