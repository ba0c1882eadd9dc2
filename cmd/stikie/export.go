package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

// exportCmd serializes the full board.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all notes as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		data, err := a.board.ExportNotes()
		if err != nil {
			fatal("Failed to export notes", err)
		}
		if exportOut == "" {
			fmt.Println(string(data))
			return
		}
		if err := os.WriteFile(exportOut, data, 0644); err != nil {
			fatal("Failed to write export file", err)
		}
		fmt.Printf("Exported to %s.\n", exportOut)
	},
}

// importCmd replaces the board with a snapshot.
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import notes from a JSON snapshot",
	Long: `Replace the entire board with the notes from a snapshot file.
Older snapshot shapes are migrated; a malformed file leaves the board
untouched. All imported notes are pushed to the remote store.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			fatal("Failed to read snapshot", err)
		}
		if err := a.board.ImportNotes(data); err != nil {
			fatal("Failed to import snapshot", err)
		}
		fmt.Printf("Imported %d notes.\n", len(a.board.Notes()))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
}
