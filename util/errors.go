package util

import "errors"

// Sentinel errors for package util.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// File and directory errors
	ErrExpectedFile      = errors.New("expected file, got directory")
	ErrExpectedDirectory = errors.New("expected directory but got file")

	// ErrFileAccess wraps any failure to read a source file or write a
	// destination file: missing files, permissions, a full volume.
	ErrFileAccess = errors.New("file access error")

	// ErrPool is returned when a worker of a copy pool fails for a reason
	// other than file access, e.g. a panic inside the worker.
	ErrPool = errors.New("worker pool error")

	// ErrConfiguration covers degenerate input such as a zero iteration count.
	ErrConfiguration = errors.New("configuration error")

	// Strategy lookup errors
	ErrUnknownStrategy = errors.New("unknown copy strategy")

	// Lock errors
	ErrDestinationBusy = errors.New("destination is locked by another benchmark")
)
