package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/noderun/internal/adapters/remote"
)

func (c *CLI) newExecutorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executor",
		Short: "Manage the out-of-process execution service",
	}

	cmd.AddCommand(c.newExecutorServeCmd())

	return cmd
}

func (c *CLI) newExecutorServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the execution service on a Unix socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			socket, _ := cmd.Flags().GetString("socket")
			idle, _ := cmd.Flags().GetDuration("idle-timeout")
			return c.app.ServeExecutor(cmd.Context(), socket, idle)
		},
	}
	cmd.Flags().String("socket", "", "Socket path, defaults to the configured executor address")
	cmd.Flags().Duration("idle-timeout", remote.DefaultIdleTimeout, "Exit after this long without work")
	return cmd
}
