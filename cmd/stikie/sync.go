package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/pkg/core"
)

// syncCmd replays the durable queue against the remote store.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued changes against the remote store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()
		if err := a.requireSync(); err != nil {
			fatal("Cannot sync", err)
		}

		owner, ok := a.session.OwnerID()
		if !ok {
			fatal("Cannot sync", fmt.Errorf("%w (run 'stikie login' first)", core.ErrNoOwner))
		}

		pending := len(a.queue.PeekAll())
		if pending == 0 {
			fmt.Println("Nothing to sync.")
			return
		}

		remaining := a.queue.Drain(cmd.Context(), owner)
		if remaining == 0 {
			fmt.Printf("Synced %d queued changes.\n", pending)
			return
		}
		fmt.Printf("Synced %d of %d queued changes; %d still pending.\n",
			pending-remaining, pending, remaining)
		fmt.Println("Tip: check your connection and remote.dsn, then run 'stikie sync' again.")
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
