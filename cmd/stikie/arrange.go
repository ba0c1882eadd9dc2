package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/pkg/store"
)

var arrangeLayout string

// arrangeCmd repositions all unpinned notes with a deterministic layout.
var arrangeCmd = &cobra.Command{
	Use:   "arrange",
	Short: "Rearrange the board with a layout",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		kind := store.LayoutKind(arrangeLayout)
		switch kind {
		case store.LayoutGrid, store.LayoutRadial, store.LayoutTimeline:
		default:
			fatal("Invalid layout", fmt.Errorf("want grid, radial or timeline, got %q", arrangeLayout))
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		if err := a.board.Arrange(kind); err != nil {
			fatal("Failed to arrange notes", err)
		}
		fmt.Printf("Board arranged (%s).\n", kind)
	},
}

func init() {
	rootCmd.AddCommand(arrangeCmd)
	arrangeCmd.Flags().StringVar(&arrangeLayout, "layout", "grid", "Layout: grid, radial or timeline")
}
