package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) newBuildTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buildtime <static_uid>",
		Short: "Print the latest recorded build time of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := c.app.BuildTime(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !usage.Found {
				_, _ = fmt.Fprintf(out, "%s: no build time recorded\n", usage.StaticUID)
				return nil
			}
			_, _ = fmt.Fprintf(out, "%s: %v (recorded %s)\n",
				usage.StaticUID,
				time.Duration(usage.Seconds)*time.Second,
				usage.LastUsed.UTC().Format(time.RFC3339),
			)
			return nil
		},
	}
}
