package cli

import (
	"github.com/spf13/cobra"

	"github.com/jacentio/constellation/internal/app"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the registered entity schemas",
		Long: `Print every registered entity kind with its partition, primary
attribute and relation attributes, after validating the registry.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.NewRegistry()
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), rootOpts.Format, r.Schemas())
		},
	}
}
