package commands

import (
	"feedbackboard/internal/models"
	"feedbackboard/internal/serviceinterfaces"

	"github.com/spf13/cobra"
)

// DarkModeCommands returns the display preference commands
func DarkModeCommands(registry serviceinterfaces.BoardRegistryInterface, opts *Options) *cobra.Command {
	darkModeCmd := &cobra.Command{
		Use:   "dark-mode",
		Short: "Show or toggle the persisted dark mode preference",
	}

	darkModeCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current display mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			board, err := registry.Board(ctx, opts.BoardID)
			if err != nil {
				return err
			}
			mode, err := board.DisplayMode(ctx)
			if err != nil {
				return err
			}
			printDisplayMode(opts, mode)
			return nil
		},
	})

	darkModeCmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Flip between light and dark mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			board, err := registry.Board(ctx, opts.BoardID)
			if err != nil {
				return err
			}
			mode, err := board.ToggleDarkMode(ctx)
			if err != nil {
				return err
			}
			printDisplayMode(opts, mode)
			return nil
		},
	})

	return darkModeCmd
}

func printDisplayMode(opts *Options, mode models.DisplayMode) {
	name := "light"
	if mode.Dark {
		name = "dark"
	}
	opts.printf("Display mode: %s (toggle shows \"%s\")\n", name, mode.ToggleLabel)
}
