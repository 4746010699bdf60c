package cmd

import (
	"errors"
	"fmt"

	"github.com/dendrascience/copybench/util"
	"github.com/spf13/cobra"
)

var errMismatch = errors.New("destination does not match source")

// NewVerifyCmd creates and returns the verify subcommand, which compares a
// destination directory against its source by content hash.
func NewVerifyCmd() *cobra.Command {
	var (
		tree    bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "verify SOURCE DEST",
		Short: "Check that a destination holds the same files as its source",
		Long: `Check that DEST holds the same files as SOURCE.

By default only the regular files at the top level of SOURCE are compared,
matching what the sequential, pool and futures strategies copy. With --tree
every file below SOURCE is compared, matching the tree strategy. Files are
compared by SHA-256 in parallel. Extra files in DEST are ignored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args[0], args[1], tree, verbose)
		},
	}

	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "Compare the whole source tree")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

func runVerify(cmd *cobra.Command, src, dst string, tree, verbose bool) error {
	out := cmd.OutOrStdout()

	var (
		names      []string
		mismatches []util.Mismatch
		err        error
	)
	if tree {
		names, err = util.TreeFiles(src)
		if err != nil {
			return fmt.Errorf("%w: %w", util.ErrFileAccess, err)
		}
		mismatches, err = util.VerifyTree(src, dst)
	} else {
		var fileSet util.FileSet
		fileSet, err = util.ListFileSet(src)
		if err != nil {
			return err
		}
		names = fileSet
		mismatches, err = util.VerifyFiles(src, dst, fileSet)
	}
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(out, "Compared %d files from %s against %s\n", len(names), src, dst)
	}
	for _, m := range mismatches {
		fmt.Fprintf(out, "  - %s\n", m)
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%w: %d of %d files differ", errMismatch, len(mismatches), len(names))
	}
	fmt.Fprintf(out, "All %d files match\n", len(names))
	return nil
}
