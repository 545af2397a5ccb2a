package commands

import (
	"encoding/json"

	"feedbackboard/internal/version"

	"github.com/spf13/cobra"
)

// VersionCommand prints build information
func VersionCommand(serviceName string, opts *Options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info := version.Get(serviceName)
			if asJSON {
				return json.NewEncoder(opts.Out).Encode(info)
			}
			opts.printf("%s\n", info.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
