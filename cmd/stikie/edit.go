package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/pkg/core"
	"github.com/stikie/stikie/pkg/store"
)

var (
	editContent string
	editColor   string
	editMove    string
	editWidth   float64
	editHeight  float64
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note's content, color, position or size",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		upd := store.Update{}
		if cmd.Flags().Changed("content") {
			upd.Content = &editContent
		}
		if editColor != "" {
			color := core.NoteColor(editColor)
			upd.Color = &color
		}
		if editMove != "" {
			p, err := parsePoint(editMove)
			if err != nil {
				fatal("Invalid --move position", err)
			}
			upd.X, upd.Y = &p.X, &p.Y
		}
		if cmd.Flags().Changed("width") {
			upd.Width = &editWidth
		}
		if cmd.Flags().Changed("height") {
			upd.Height = &editHeight
		}

		if err := a.board.UpdateNote(args[0], upd); err != nil {
			fatal("Failed to update note", err)
		}
		fmt.Printf("Note '%s' updated.\n", args[0])
	},
}

// colorCmd cycles a note through the palette.
var colorCmd = &cobra.Command{
	Use:   "color <id>",
	Short: "Cycle a note to the next color",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		if err := a.board.CycleColor(args[0]); err != nil {
			fatal("Failed to cycle color", err)
		}
		n, _ := a.board.Note(args[0])
		fmt.Printf("Note '%s' is now %s.\n", args[0], n.Color)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(colorCmd)
	editCmd.Flags().StringVar(&editContent, "content", "", "New content")
	editCmd.Flags().StringVar(&editColor, "color", "", "Color tag")
	editCmd.Flags().StringVar(&editMove, "move", "", "New position as x,y")
	editCmd.Flags().Float64Var(&editWidth, "width", 0, "New width")
	editCmd.Flags().Float64Var(&editHeight, "height", 0, "New height")
}
