package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/pkg/core"
	"github.com/stikie/stikie/pkg/store"
)

var (
	addAt    string
	addColor string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add a note to the board",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		var at *core.Point
		if addAt != "" {
			p, err := parsePoint(addAt)
			if err != nil {
				fatal("Invalid --at position", err)
			}
			at = &p
		}

		id, err := a.board.AddNote(at)
		if err != nil {
			fatal("Failed to add note", err)
		}

		if len(args) == 1 {
			if err := a.board.UpdateNote(id, store.Update{Content: &args[0]}); err != nil {
				fatal("Failed to set content", err)
			}
		}
		if addColor != "" {
			color := core.NoteColor(addColor)
			if err := a.board.UpdateNote(id, store.Update{Color: &color}); err != nil {
				fatal("Failed to set color", err)
			}
		}

		fmt.Println(id)
	},
}

func parsePoint(s string) (core.Point, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return core.Point{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.Point{}, err
	}
	return core.Point{X: x, Y: y}, nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addAt, "at", "", "Position as x,y in canvas space (default: smart placement)")
	addCmd.Flags().StringVar(&addColor, "color", "", "Color tag (yellow, pink, blue, green, orange, purple)")
}
