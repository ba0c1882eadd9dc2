package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/pkg/core"
)

var (
	themeDark  bool
	themeLight bool
)

// themeCmd toggles the persisted dark-mode setting.
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or toggle the dark-mode setting",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cmd.Context())
		if err != nil {
			fatal("Failed to initialize", err)
		}
		defer a.Close()

		settings, err := a.files.ReadSettings()
		if err != nil {
			fatal("Failed to read settings", err)
		}

		switch {
		case themeDark:
			settings.DarkMode = true
		case themeLight:
			settings.DarkMode = false
		default:
			fmt.Println(themeName(settings))
			return
		}

		if err := a.files.WriteSettings(settings); err != nil {
			fatal("Failed to write settings", err)
		}
		fmt.Printf("Theme set to %s.\n", themeName(settings))
	},
}

func themeName(s core.Settings) string {
	if s.DarkMode {
		return "dark"
	}
	return "light"
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.Flags().BoolVar(&themeDark, "dark", false, "Switch to the dark theme")
	themeCmd.Flags().BoolVar(&themeLight, "light", false, "Switch to the light theme")
	themeCmd.MarkFlagsMutuallyExclusive("dark", "light")
}
