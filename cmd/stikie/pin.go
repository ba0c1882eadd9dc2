package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/pkg/core"
)

// pinCmd represents the pin command
var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin or unpin a note",
	Long: `Toggle a note between the board canvas and a fixed position on
screen. At most ` + fmt.Sprint(core.MaxPinnedNotes) + ` notes can be pinned at once.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		err = a.board.TogglePin(args[0])
		if errors.Is(err, core.ErrPinLimit) {
			fmt.Fprintf(os.Stderr, "Pin limit reached: at most %d notes can be pinned. Unpin one first.\n", core.MaxPinnedNotes)
			os.Exit(1)
		}
		if err != nil {
			fatal("Failed to toggle pin", err)
		}

		n, _ := a.board.Note(args[0])
		if n.Pinned {
			fmt.Printf("Note '%s' pinned (%d/%d).\n", args[0], a.board.PinnedCount(), core.MaxPinnedNotes)
		} else {
			fmt.Printf("Note '%s' unpinned.\n", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)
}
