package cmd

import (
	"fmt"

	"github.com/dendrascience/copybench/util"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewCountCmd creates and returns the count subcommand. It shows which files
// a benchmark of PATH would copy and how much data that is.
func NewCountCmd() *cobra.Command {
	var (
		path      string
		listFiles bool
	)

	cmd := &cobra.Command{
		Use:   "count [PATH]",
		Short: "Count the files a benchmark would copy",
		Long: `Count the files a benchmark of PATH would copy.

Prints the number of regular files at the top level of PATH (the set every
strategy copies) with their total size, followed by totals for the whole
tree, which is what the tree strategy copies.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				path = args[0]
			}
			return runCount(cmd, path, listFiles)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "./", "Directory to count")
	cmd.Flags().BoolVarP(&listFiles, "list", "l", false, "Print each file name")

	return cmd
}

func runCount(cmd *cobra.Command, path string, listFiles bool) error {
	out := cmd.OutOrStdout()

	fileSet, err := util.ListFileSet(path)
	if err != nil {
		return err
	}
	size, err := util.FileSetSize(path, fileSet)
	if err != nil {
		return err
	}
	tree, err := util.CountTree(path)
	if err != nil {
		return fmt.Errorf("%w: %w", util.ErrFileAccess, err)
	}

	if listFiles {
		for _, name := range fileSet {
			fmt.Fprintf(out, "    %s\n", name)
		}
	}
	fmt.Fprintf(out, "Top-level files: %d (%s)\n", fileSet.Len(), humanize.Bytes(uint64(size)))
	fmt.Fprintf(out, "Whole tree: %d files in %d directories (%s)\n", tree.Files, tree.Dirs, humanize.Bytes(uint64(tree.Bytes)))
	return nil
}
