package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// archiveCmd soft-deletes a note.
var archiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a note (soft delete)",
	Long: `Move a note to the archive. Archived notes stay synced and can be
restored; use 'stikie undo' right after, or 'stikie restore' any time.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		if err := a.board.Archive(args[0]); err != nil {
			fatal("Failed to archive note", err)
		}
		fmt.Printf("Note '%s' archived.\n", args[0])
	},
}

// restoreCmd un-archives a note.
var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a note from the archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		if err := a.board.RestoreNote(args[0]); err != nil {
			fatal("Failed to restore note", err)
		}
		fmt.Printf("Note '%s' restored.\n", args[0])
	},
}

// clearArchiveCmd permanently removes all archived notes.
var clearArchiveCmd = &cobra.Command{
	Use:   "clear-archive",
	Short: "Permanently remove all archived notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		if err := a.board.ClearArchive(); err != nil {
			fatal("Failed to clear archive", err)
		}
		fmt.Println("Archive cleared.")
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(clearArchiveCmd)
}
