// Package copier implements the interchangeable directory copy strategies that
// copybench measures.
//
// Every strategy has the same signature: it receives a source directory, a
// destination directory and the FileSet, and copies every named file from
// source to destination, overwriting same-named files.
//
// The four strategies are:
//   - sequential: one file at a time in FileSet order
//   - tree: a recursive copy of the whole source tree; it ignores the FileSet
//     argument and copies sub-directories too
//   - pool: a fixed pool of worker goroutines fed from a channel
//   - futures: a scoped errgroup with a concurrency limit, one submitted
//     task per file
//
// Because tree copies more than the FileSet, its timings include any nested
// files in the source.
package copier
