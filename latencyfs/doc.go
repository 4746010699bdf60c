// Package latencyfs implements a pass-through FUSE filesystem that adds a
// fixed delay to every operation and can cap write and read bandwidth.
//
// Mounting it over a local directory gives the copy strategies a destination
// that behaves like a slow network share, which is where parallel copies pay
// off. Every node maps directly onto a path in the backing directory; nothing
// is cached in memory besides inode numbers.
//
// The main entry point is New, whose result can be served with
// bazil.org/fuse/fs.Serve.
package latencyfs
