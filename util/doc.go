// Package util provides the filesystem building blocks shared by the copy
// strategies, the benchmark driver and the CLI.
//
// Key Components:
//
// FileSet:
//   - ListFileSet reads the names of the regular files directly inside a
//     directory, sorted, once per run
//   - FileSetSize sums their byte sizes for throughput reporting
//
// Copying:
//   - CopyFile copies one named file into a destination directory, keeping
//     the permission bits and overwriting any file of the same name
//   - CopyTree recursively copies a whole directory tree
//
// Tree statistics:
//   - CountTree walks a tree and reports file, directory and byte totals
//
// Verification:
//   - SHA-256 content hashing (GetFileHash, GetHash)
//   - VerifyFiles and VerifyTree compare a destination against its source
//     with a pool of runtime.NumCPU() hashing workers
//
// All failures to touch the filesystem are wrapped with ErrFileAccess so that
// callers can classify them with errors.Is.
package util
