package commands

import (
	"database/sql"

	"feedbackboard/internal/config"
	"feedbackboard/internal/observability"
	"feedbackboard/internal/serviceinterfaces"

	"github.com/spf13/cobra"
)

// Dependencies are the initialized resources the admin commands operate on
type Dependencies struct {
	Config      *config.Config
	Registry    serviceinterfaces.BoardRegistryInterface
	DB          *sql.DB
	Migrator    Migrator
	Logger      *observability.Logger
	ServiceName string
}

// NewRootCommand builds the adm command tree
func NewRootCommand(deps Dependencies, opts *Options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Library Feedback Board Administration Tool",
		Long: `Library Feedback Board Administration Tool

A CLI tool for administering the feedback board.
Provides commands for feedback management, display preferences and database operations.`,
		SilenceUsage: true,

		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	rootCmd.SetOut(opts.Out)
	opts.AddFlags(rootCmd)

	rootCmd.AddCommand(FeedbackCommands(deps.Registry, deps.Logger, opts))
	rootCmd.AddCommand(DarkModeCommands(deps.Registry, opts))
	rootCmd.AddCommand(DatabaseCommands(deps.Config, deps.DB, deps.Migrator, deps.Logger, opts))
	rootCmd.AddCommand(VersionCommand(deps.ServiceName, opts))

	return rootCmd
}
