// Package main provides the copybench command-line interface.
//
// copybench measures how long several strategies take to copy the files of a
// source directory into a destination directory: a sequential loop, a
// whole-tree copy, a bounded worker pool and a bounded set of futures. Each
// strategy is timed over a number of iterations and the averages are
// compared.
//
// The main binary supports multiple subcommands:
//   - run: benchmark the copy strategies
//   - history: list recorded runs
//   - seed: generate a fixture source directory
//   - count: list the files a run would copy
//   - verify: compare a destination with its source
//   - mount: mount a latency-injecting destination filesystem
package main
