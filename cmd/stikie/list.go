package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/pkg/core"
)

var (
	listJSON     bool
	listAll      bool
	listArchived bool
	listMatch    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes on the board",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		var notes []core.Note
		if listMatch != "" {
			notes, err = a.board.MatchNotes(listMatch)
			if err != nil {
				fatal("Failed to match notes", err)
			}
		} else {
			notes = a.board.Notes()
		}

		var filtered []core.Note
		for _, n := range notes {
			if listArchived && !n.Archived {
				continue
			}
			if !listArchived && !listAll && n.Archived {
				continue
			}
			filtered = append(filtered, n)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(filtered); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, n := range filtered {
			marks := ""
			if n.Pinned {
				marks += " 📌"
			}
			if n.Archived {
				marks += " [archived]"
			}
			fmt.Printf("%s  %-7s %-10s%s  %s\n",
				n.ID, n.Color, formatRelative(n.UpdatedAt), marks, firstLine(n.Content))
		}
	},
}

func firstLine(content string) string {
	for i, r := range content {
		if r == '\n' {
			return content[:i]
		}
	}
	return content
}

// formatRelative renders an epoch-millis timestamp as a rough age.
func formatRelative(ts int64) string {
	diff := time.Since(time.UnixMilli(ts))
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return time.UnixMilli(ts).Format("Jan 2")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include archived notes")
	listCmd.Flags().BoolVar(&listArchived, "archived", false, "Show only archived notes")
	listCmd.Flags().StringVar(&listMatch, "match", "", "Filter by glob on id or content")
}
