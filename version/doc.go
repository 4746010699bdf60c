// Package version reports the copybench build version.
//
// Version, Commit and Date are injected at link time:
//
//	-ldflags "-X github.com/dendrascience/copybench/version.Version=v1.0.0 -X github.com/dendrascience/copybench/version.Commit=abc123"
//
// When they are not set, the values recorded by the Go toolchain in the
// binary's build info are used instead. Every benchmark report and history
// row carries GetVersion so results from different builds can be told apart.
package version
