package commands

import (
	"github.com/spf13/cobra"
	"go.pkgs.ch/enva/internal/app"
)

func (c *CLI) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the environment in another format to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			return c.app.Export(cmd.Context(), format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("format", app.FormatYAML, "Output format: yaml, requirements, or lock")
	return cmd
}
