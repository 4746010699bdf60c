package cmd

import (
	"github.com/dendrascience/copybench/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the copybench CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "copybench",
		Short: "copybench - compare strategies for copying a directory of files",
		Long: `copybench times several ways of copying the files of one directory into
another: a sequential loop, a whole-tree copy, a worker pool and a bounded
set of futures. Each strategy is run a number of times and its average
wall-clock time is reported, so you can tell whether parallel copies pay off
for a given destination (for example a network share).

Use subcommands to perform different operations:
  - run: benchmark every strategy
  - history: show previous runs
  - seed: create a source directory to benchmark with
  - count: list the files a run would copy
  - verify: check a destination against its source
  - mount: mount a slow, share-like destination for local experiments`,
		Version: version.GetFullVersion(),
	}

	groupBenchmark := "benchmark"
	groupUtilities := "utilities"
	groupFilesystem := "filesystem"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupBenchmark,
		Title: "Benchmark Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})

	runCmd := NewRunCmd()
	historyCmd := NewHistoryCmd()
	seedCmd := NewSeedCmd()
	countCmd := NewCountCmd()
	verifyCmd := NewVerifyCmd()
	mountCmd := NewMountCmd()

	runCmd.GroupID = groupBenchmark
	historyCmd.GroupID = groupBenchmark
	seedCmd.GroupID = groupUtilities
	countCmd.GroupID = groupUtilities
	verifyCmd.GroupID = groupUtilities
	mountCmd.GroupID = groupFilesystem

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(mountCmd)

	return rootCmd
}
