package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/pkg/core"
)

// loginCmd binds the board to an owner and runs the one-shot merge
// with the remote store.
var loginCmd = &cobra.Command{
	Use:   "login <owner-id>",
	Short: "Sign in and merge local notes with the remote board",
	Long: `Sign in with an owner id (a UUID). Anonymous notes are adopted by the
owner: notes already on the remote win on id collisions, notes with
legacy local ids get a fresh id, and everything local-only is pushed up.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ownerID := args[0]
		if !core.IsCanonicalID(ownerID) {
			fatal("Invalid owner id", fmt.Errorf("%q is not a UUID", ownerID))
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()
		if err := a.requireSync(); err != nil {
			fatal("Cannot sign in", err)
		}

		if err := a.session.SignIn(ownerID); err != nil {
			fatal("Failed to sign in", err)
		}
		a.reconciler.OnSignIn(cmd.Context(), ownerID)
		fmt.Printf("Signed in as %s. %d notes on the board.\n", ownerID, len(a.board.Notes()))
	},
}

var logoutPurge bool

// logoutCmd clears the local board and the durable queue.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local board",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		owner, ok := a.session.OwnerID()
		if !ok {
			fmt.Println("Not signed in.")
			return
		}

		if logoutPurge {
			if err := a.requireSync(); err != nil {
				fatal("Cannot purge remote notes", err)
			}
			if a.remote == nil {
				fatal("Cannot purge remote notes", fmt.Errorf("remote store unreachable"))
			}
			if err := a.remote.DeleteAllForOwner(cmd.Context(), owner); err != nil {
				fatal("Failed to purge remote notes", err)
			}
			fmt.Println("Purged all remote notes.")
		}

		if err := a.session.SignOut(); err != nil {
			fatal("Failed to sign out", err)
		}
		if a.reconciler != nil {
			a.reconciler.OnSignOut()
		} else {
			if err := a.board.ClearAllNotes(); err != nil {
				fatal("Failed to clear board", err)
			}
		}
		fmt.Println("Signed out. Local board cleared.")
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&logoutPurge, "purge-remote", false, "Also delete every remote note owned by this account")
}
