package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/dendrascience/copybench/history"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates and returns the history subcommand, which lists runs
// recorded with run --history.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history DATABASE",
		Short: "List benchmark runs recorded in a history database",
		Long: `List benchmark runs recorded in DATABASE by copybench run --history,
newest first, with the average time of each strategy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, path string, limit int) error {
	out := cmd.OutOrStdout()

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s  %s -> %s  %d files, %d iterations (%s)\n",
			run.Started.Local().Format(time.DateTime), run.ID, run.SourceDir, run.DestDir,
			run.FileCount, run.Iterations, run.Version)
		parts := make([]string, 0, len(run.Results))
		for _, res := range run.Results {
			if res.Error != "" {
				parts = append(parts, res.Strategy+"=failed")
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", res.Strategy, res.Average.Round(time.Microsecond)))
		}
		fmt.Fprintf(out, "    %s\n", strings.Join(parts, "  "))
	}
	return nil
}
