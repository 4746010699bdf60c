// Package cmd provides the command-line interface implementation for copybench.
//
// Each subcommand lives in its own file with a constructor returning a
// *cobra.Command; NewRootCmd wires them into groups. The commands are thin:
// benchmarking lives in the bench package, copying in copier, and the
// emulated network share in latencyfs.
//
// Commands:
//   - run: time every copy strategy against a source and destination
//   - history: list runs recorded with run --history
//   - seed: generate a fixture source directory
//   - count: show the files a benchmark would copy
//   - verify: compare a destination against its source
//   - mount: mount a latency-injecting filesystem to use as a destination
package cmd
