package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/copybench/latencyfs"
	"github.com/dendrascience/copybench/util"
	"github.com/dendrascience/copybench/version"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewMountCmd creates and returns the mount subcommand. It mounts a
// latency-injecting view of a local directory to use as a benchmark
// destination.
func NewMountCmd() *cobra.Command {
	var (
		latency   time.Duration
		bandwidth string
	)

	cmd := &cobra.Command{
		Use:   "mount BACKING_PATH MOUNTPOINT",
		Short: "Mount a slow, network-share-like view of a directory",
		Long: `Mount a view of BACKING_PATH at MOUNTPOINT that delays every filesystem
operation by --latency and limits reads and writes to --bandwidth.

Point copybench run --dest at MOUNTPOINT to see how the strategies behave
against a network share without needing one. Interrupt to unmount.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bps uint64
			if bandwidth != "" {
				var err error
				if bps, err = humanize.ParseBytes(bandwidth); err != nil {
					return fmt.Errorf("%w: invalid bandwidth %q: %w", util.ErrConfiguration, bandwidth, err)
				}
			}
			return runMount(args[0], args[1], latencyfs.Options{
				Latency:   latency,
				Bandwidth: int64(bps),
			})
		},
	}

	cmd.Flags().DurationVar(&latency, "latency", 2*time.Millisecond, "Delay added to every operation")
	cmd.Flags().StringVar(&bandwidth, "bandwidth", "", "Transfer limit per second, e.g. 100MB (default unlimited)")

	return cmd
}

func runMount(backingPath, mountpoint string, opts latencyfs.Options) error {
	fmt.Printf("copybench %s starting...\n", version.GetFullVersion())

	if util.PathsOverlap(backingPath, mountpoint) {
		return fmt.Errorf("%w: backing path %s and mountpoint %s overlap", util.ErrConfiguration, backingPath, mountpoint)
	}
	if err := util.EnsureDir(backingPath); err != nil {
		return fmt.Errorf("failed to create backing directory: %w", err)
	}

	filesystem := latencyfs.New(backingPath, opts)

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("copybench"),
		fuse.Subtype("latencyfs"),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, unmounting...")
		if err := fuse.Unmount(mountpoint); err != nil {
			log.Printf("Warning: unmount failed: %v", err)
		}
	}()

	log.Printf("latencyfs mounted at %s (backing: %s, latency: %s)", mountpoint, backingPath, opts.Latency)
	if err := fs.Serve(c, filesystem); err != nil {
		return err
	}
	log.Printf("Unmounted after %d operations", filesystem.Operations())
	return nil
}
