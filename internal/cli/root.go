package cli

import (
	"github.com/kolah/relay/internal/config"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "relay",
		Short:         "Relay - declarative routes on a pluggable HTTP server",
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	config.BindCommonFlags(root)
	root.AddCommand(
		ServeCommand(),
		RoutesCommand(),
		OpenAPICommand(),
		GenCommand(),
	)

	return root
}
