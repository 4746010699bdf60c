package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dendrascience/copybench/util"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	outputPath string
	fileCount  int
	size       string
	nested     int
	buckets    int
	verbose    bool
}

type seedStats struct {
	topLevel int
	nested   int
	dirs     int
	bytes    uint64
}

// NewSeedCmd creates and returns the seed subcommand, which writes a source
// directory to benchmark with.
func NewSeedCmd() *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a source directory of test files",
		Long: `Generate a source directory of test files for copybench run.

--count files of --size bytes are written at the top level; those are what
every strategy copies. --nested extra files are spread over bucket
subdirectories chosen from each file's name. Only the tree strategy copies
those, which makes its different behaviour easy to see.

Each file is filled with UUID lines so the contents are not compressible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := seedFixture(cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d files (%d nested in %d directories), %s\n",
				stats.topLevel+stats.nested, stats.nested, stats.dirs, humanize.Bytes(stats.bytes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&opts.fileCount, "count", "c", 100, "Number of top-level files to generate")
	cmd.Flags().StringVar(&opts.size, "size", "64KiB", "Size of each file, e.g. 4KB or 1MiB")
	cmd.Flags().IntVar(&opts.nested, "nested", 0, "Number of extra files placed in subdirectories")
	cmd.Flags().IntVar(&opts.buckets, "buckets", 8, "Number of subdirectories for nested files")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

func seedFixture(out io.Writer, opts seedOptions) (seedStats, error) {
	var stats seedStats
	size, err := humanize.ParseBytes(opts.size)
	if err != nil {
		return stats, fmt.Errorf("%w: invalid size %q: %w", util.ErrConfiguration, opts.size, err)
	}
	switch {
	case opts.fileCount < 0:
		return stats, fmt.Errorf("%w: count must not be negative", util.ErrConfiguration)
	case opts.nested < 0:
		return stats, fmt.Errorf("%w: nested must not be negative", util.ErrConfiguration)
	case opts.nested > 0 && opts.buckets < 1:
		return stats, fmt.Errorf("%w: buckets must be at least 1", util.ErrConfiguration)
	}

	if opts.verbose {
		fmt.Fprintf(out, "Generating %d files of %s in %s\n", opts.fileCount+opts.nested, humanize.Bytes(size), opts.outputPath)
	}
	if err := util.EnsureDir(opts.outputPath); err != nil {
		return stats, err
	}

	for i := 0; i < opts.fileCount; i++ {
		name := fmt.Sprintf("file-%05d.dat", i)
		if err := writeSeedFile(filepath.Join(opts.outputPath, name), size); err != nil {
			return stats, err
		}
		stats.topLevel++
		stats.bytes += size
		if opts.verbose && stats.topLevel%1000 == 0 {
			fmt.Fprintf(out, "Created %d/%d files...\n", stats.topLevel, opts.fileCount)
		}
	}

	dirs := make(map[string]bool)
	for i := 0; i < opts.nested; i++ {
		name := fmt.Sprintf("nested-%05d.dat", i)
		dir := filepath.Join(opts.outputPath, fmt.Sprintf("bucket-%02d", util.BucketForName(name, opts.buckets)))
		if !dirs[dir] {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return stats, fmt.Errorf("%w: %w", util.ErrFileAccess, err)
			}
			dirs[dir] = true
		}
		if err := writeSeedFile(filepath.Join(dir, name), size); err != nil {
			return stats, err
		}
		stats.nested++
		stats.bytes += size
	}
	stats.dirs = len(dirs)
	return stats, nil
}

// writeSeedFile writes exactly size bytes of UUID lines to path.
func writeSeedFile(path string, size uint64) error {
	var buf bytes.Buffer
	buf.Grow(int(size))
	for uint64(buf.Len()) < size {
		buf.WriteString(uuid.New().String())
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, buf.Bytes()[:size], 0o644); err != nil {
		return fmt.Errorf("%w: %w", util.ErrFileAccess, err)
	}
	return nil
}
