package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local output cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear [uids...]",
		Short: "Remove cache entries, or the whole cache when no uid is given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.ClearCache(cmd.Context(), args)
		},
	})

	return cmd
}
