package commands

import (
	"github.com/spf13/cobra"
	"go.pkgs.ch/enva/internal/app"
)

func (c *CLI) newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Resolve the manifest into a pinned lockfile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			platforms, _ := cmd.Flags().GetStringSlice("platform")
			return c.app.Lock(cmd.Context(), app.LockOptions{
				Force:     force,
				Platforms: platforms,
			})
		},
	}
	cmd.Flags().Bool("force", false, "Re-resolve every dependency, ignoring existing pins")
	cmd.Flags().StringSlice("platform", nil, "Platforms to resolve for (repeatable)")
	return cmd
}
