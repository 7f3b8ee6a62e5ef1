package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/noderun/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <graph.json> [uids...]",
		Short: "Build the results of a graph file, or the given node uids",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			threads, _ := cmd.Flags().GetInt("threads")
			keepGoing, _ := cmd.Flags().GetBool("keep-going")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			verbose, _ := cmd.Flags().GetBool("verbose")
			outputDir, _ := cmd.Flags().GetString("output")
			executionLog, _ := cmd.Flags().GetString("execution-log")
			color, _ := cmd.Flags().GetString("color")
			watch, _ := cmd.Flags().GetBool("watch")

			return c.app.Run(cmd.Context(), args[0], app.RunOptions{
				Targets:      args[1:],
				Threads:      threads,
				KeepGoing:    keepGoing,
				NoCache:      noCache,
				Verbose:      verbose,
				OutputDir:    outputDir,
				ExecutionLog: executionLog,
				Color:        color,
				Watch:        watch,
			})
		},
	}
	cmd.Flags().IntP("threads", "j", 0, "Number of cpu slots, overrides the configuration")
	cmd.Flags().BoolP("keep-going", "k", false, "Keep building after a node failed")
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass the caches and force execution")
	cmd.Flags().BoolP("verbose", "v", false, "Print partial results, node stderr and debug logs")
	cmd.Flags().StringP("output", "o", "", "Directory receiving hard links of the requested outputs")
	cmd.Flags().String("execution-log", "", "Write the execution log and build errors as JSON to this file")
	cmd.Flags().String("color", "auto", "Colour output: auto, always or never")
	cmd.Flags().BoolP("watch", "w", false, "Rebuild when the graph file or a node input changes")
	return cmd
}
