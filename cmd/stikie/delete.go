package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd permanently removes a note.
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Permanently delete a note",
	Long: `Remove a note from the board entirely, locally and remotely.
Recoverable only with an immediate 'stikie undo'.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		if err := a.board.PermanentlyDelete(args[0]); err != nil {
			fatal("Failed to delete note", err)
		}
		fmt.Printf("Note '%s' deleted.\n", args[0])
	},
}

// undoCmd restores the most recently archived or deleted note.
var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last archive or delete",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		restored, err := a.board.UndoDelete()
		if err != nil {
			fatal("Failed to undo", err)
		}
		if restored == nil {
			fmt.Println("Nothing to undo.")
			return
		}
		fmt.Printf("Note '%s' restored.\n", restored.ID)
	},
}

// duplicateCmd clones a note.
var duplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Duplicate a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		id, err := a.board.DuplicateNote(args[0])
		if err != nil {
			fatal("Failed to duplicate note", err)
		}
		fmt.Println(id)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(duplicateCmd)
}
