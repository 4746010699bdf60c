package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dendrascience/copybench/bench"
	"github.com/dendrascience/copybench/copier"
	"github.com/dendrascience/copybench/history"
	"github.com/dendrascience/copybench/util"
	"github.com/spf13/cobra"
)

const (
	envSource     = "COPYBENCH_SOURCE"
	envDest       = "COPYBENCH_DEST"
	envIterations = "COPYBENCH_ITERATIONS"
)

type runOptions struct {
	cfg         bench.Config
	jsonOutput  bool
	historyPath string
}

// NewRunCmd creates and returns the run subcommand, which benchmarks every
// selected copy strategy.
func NewRunCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Time each copy strategy from a source to a destination directory",
		Long: `Time each copy strategy from a source to a destination directory.

The files at the top level of the source directory are listed once, then each
strategy copies them into the destination --iterations times. The average time
per strategy is printed as it finishes, followed by a summary table.

Strategies: ` + strings.Join(copier.Names(), ", ") + `.
The tree strategy copies the whole source tree, subdirectories included.

The source, destination and iteration count fall back to the ` + envSource + `,
` + envDest + ` and ` + envIterations + ` environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyEnv(cmd, &opts.cfg); err != nil {
				return err
			}
			return runBenchmark(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.cfg.SourceDir, "source", "s", "", "Directory whose files are copied")
	flags.StringVarP(&opts.cfg.DestDir, "dest", "d", "", "Directory the files are copied into (created if missing)")
	flags.IntVarP(&opts.cfg.Iterations, "iterations", "n", bench.DefaultIterations, "Number of timed copies per strategy")
	flags.IntVarP(&opts.cfg.Workers, "workers", "w", 0, "Workers for the pool and futures strategies (0 = one per CPU)")
	flags.StringSliceVar(&opts.cfg.Strategies, "strategy", nil, "Strategy to run, repeatable (default all)")
	flags.BoolVar(&opts.cfg.Clean, "clean", false, "Empty the destination before each strategy")
	flags.BoolVar(&opts.cfg.Verify, "verify", false, "Compare the destination against the source after each strategy")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print the report as JSON instead of text")
	flags.StringVar(&opts.historyPath, "history", "", "Record the report in this SQLite database")

	return cmd
}

// applyEnv fills unset flags from the environment.
func applyEnv(cmd *cobra.Command, cfg *bench.Config) error {
	if !cmd.Flags().Changed("source") {
		if v := os.Getenv(envSource); v != "" {
			cfg.SourceDir = v
		}
	}
	if !cmd.Flags().Changed("dest") {
		if v := os.Getenv(envDest); v != "" {
			cfg.DestDir = v
		}
	}
	if !cmd.Flags().Changed("iterations") {
		if v := os.Getenv(envIterations); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not a number", util.ErrConfiguration, envIterations, v)
			}
			cfg.Iterations = n
		}
	}
	return nil
}

func runBenchmark(cmd *cobra.Command, opts runOptions) error {
	out := cmd.OutOrStdout()

	var driverOpts []bench.Option
	if !opts.jsonOutput {
		driverOpts = append(driverOpts, bench.WithOutput(out))
	}
	driver, err := bench.New(opts.cfg, driverOpts...)
	if err != nil {
		return err
	}

	report, runErr := driver.Run()
	if runErr != nil && !errors.Is(runErr, bench.ErrStrategyFailed) {
		return runErr
	}

	if opts.historyPath != "" {
		if err := recordHistory(opts.historyPath, report); err != nil {
			log.Printf("Warning: failed to record run in %s: %v", opts.historyPath, err)
		}
	}

	if opts.jsonOutput {
		if err := report.WriteJSON(out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out)
		if err := report.WriteSummary(out); err != nil {
			return err
		}
	}
	return runErr
}

func recordHistory(path string, report bench.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(report)
}
