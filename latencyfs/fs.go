package latencyfs

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
)

// Options tune the simulated link.
type Options struct {
	Latency   time.Duration // added to every operation
	Bandwidth int64         // bytes per second for reads and writes, 0 for unlimited
}

// FS serves the contents of a backing directory.
type FS struct {
	Backing string
	opts    Options
	inodes  *inodeTable
	ops     atomic.Uint64
}

// New returns a filesystem backed by the directory at backing.
func New(backing string, opts Options) *FS {
	return &FS{
		Backing: backing,
		opts:    opts,
		inodes:  newInodeTable(),
	}
}

// Operations returns how many filesystem operations have been served.
func (f *FS) Operations() uint64 {
	return f.ops.Load()
}

// Root returns the root directory node.
func (f *FS) Root() (fs.Node, error) {
	return &Dir{fs: f}, nil
}

func (f *FS) full(rel string) string {
	return filepath.Join(f.Backing, filepath.FromSlash(rel))
}

// delay waits out the configured latency plus the transfer time for n bytes.
func (f *FS) delay(ctx context.Context, n int) error {
	f.ops.Add(1)
	wait := f.opts.Latency
	if f.opts.Bandwidth > 0 && n > 0 {
		wait += time.Duration(float64(n) / float64(f.opts.Bandwidth) * float64(time.Second))
	}
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return syscall.EINTR
	}
}

// errno converts an os error into something the kernel understands.
func errno(err error) error {
	if err == nil {
		return nil
	}
	var e syscall.Errno
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, os.ErrExist):
		return syscall.EEXIST
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	}
	return syscall.EIO
}

func (f *FS) fillAttr(rel string, info os.FileInfo, a *fuse.Attr) {
	a.Inode = f.inodes.get(rel)
	a.Mode = info.Mode()
	a.Size = uint64(info.Size())
	a.Mtime = info.ModTime()
	a.Ctime = info.ModTime()
	a.Atime = time.Now()
}

// Dir is a directory in the backing tree. The root has an empty rel.
type Dir struct {
	fs  *FS
	rel string
}

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	if err := d.fs.delay(ctx, 0); err != nil {
		return err
	}
	info, err := os.Stat(d.fs.full(d.rel))
	if err != nil {
		return errno(err)
	}
	d.fs.fillAttr(d.rel, info, a)
	return nil
}

func (d *Dir) child(name string) string {
	return path.Join(d.rel, name)
}

// Lookup resolves a name in this directory.
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	if err := d.fs.delay(ctx, 0); err != nil {
		return nil, err
	}
	rel := d.child(name)
	info, err := os.Lstat(d.fs.full(rel))
	if err != nil {
		return nil, errno(err)
	}
	if info.IsDir() {
		return &Dir{fs: d.fs, rel: rel}, nil
	}
	if !info.Mode().IsRegular() {
		return nil, syscall.ENOENT
	}
	return &File{fs: d.fs, rel: rel}, nil
}

// ReadDirAll lists directory contents
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	if err := d.fs.delay(ctx, 0); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.fs.full(d.rel))
	if err != nil {
		return nil, errno(err)
	}
	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		var typ fuse.DirentType
		switch {
		case e.IsDir():
			typ = fuse.DT_Dir
		case e.Type().IsRegular():
			typ = fuse.DT_File
		default:
			continue
		}
		dirents = append(dirents, fuse.Dirent{
			Inode: d.fs.inodes.get(d.child(e.Name())),
			Name:  e.Name(),
			Type:  typ,
		})
	}
	return dirents, nil
}

// Create makes a new file and opens it.
func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	if err := d.fs.delay(ctx, 0); err != nil {
		return nil, nil, err
	}
	rel := d.child(req.Name)
	flags := int(req.Flags) | os.O_CREATE
	fh, err := os.OpenFile(d.fs.full(rel), flags, req.Mode.Perm())
	if err != nil {
		return nil, nil, errno(err)
	}
	info, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, nil, errno(err)
	}
	d.fs.fillAttr(rel, info, &resp.Attr)
	file := &File{fs: d.fs, rel: rel}
	return file, &Handle{fs: d.fs, f: fh}, nil
}

// Mkdir creates a new directory
func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fs.Node, error) {
	if err := d.fs.delay(ctx, 0); err != nil {
		return nil, err
	}
	rel := d.child(req.Name)
	if err := os.Mkdir(d.fs.full(rel), req.Mode.Perm()); err != nil {
		return nil, errno(err)
	}
	return &Dir{fs: d.fs, rel: rel}, nil
}

// Remove deletes a file or an empty directory.
func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	if err := d.fs.delay(ctx, 0); err != nil {
		return err
	}
	rel := d.child(req.Name)
	if err := os.Remove(d.fs.full(rel)); err != nil {
		return errno(err)
	}
	d.fs.inodes.forget(rel)
	return nil
}

// File is a regular file in the backing tree.
type File struct {
	fs  *FS
	rel string
}

// Attr returns file attributes
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	if err := f.fs.delay(ctx, 0); err != nil {
		return err
	}
	info, err := os.Stat(f.fs.full(f.rel))
	if err != nil {
		return errno(err)
	}
	f.fs.fillAttr(f.rel, info, a)
	return nil
}

// Open opens the backing file with the requested flags.
func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	if err := f.fs.delay(ctx, 0); err != nil {
		return nil, err
	}
	flags := int(req.Flags) &^ (os.O_CREATE | os.O_EXCL)
	fh, err := os.OpenFile(f.fs.full(f.rel), flags, 0)
	if err != nil {
		return nil, errno(err)
	}
	return &Handle{fs: f.fs, f: fh}, nil
}

// Setattr handles truncation, chmod and mtime updates.
func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if err := f.fs.delay(ctx, 0); err != nil {
		return err
	}
	full := f.fs.full(f.rel)
	if req.Valid.Size() {
		if err := os.Truncate(full, int64(req.Size)); err != nil {
			return errno(err)
		}
	}
	if req.Valid.Mode() {
		if err := os.Chmod(full, req.Mode.Perm()); err != nil {
			return errno(err)
		}
	}
	if req.Valid.Mtime() {
		if err := os.Chtimes(full, time.Time{}, req.Mtime); err != nil {
			return errno(err)
		}
	}
	info, err := os.Stat(full)
	if err != nil {
		return errno(err)
	}
	f.fs.fillAttr(f.rel, info, &resp.Attr)
	return nil
}

// Fsync forces synchronization
func (f *File) Fsync(ctx context.Context, req *fuse.FsyncRequest) error {
	return f.fs.delay(ctx, 0)
}

// Handle is an open backing file.
type Handle struct {
	fs *FS
	f  *os.File
}

// Read reads from the backing file at the requested offset.
func (h *Handle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	if err := h.fs.delay(ctx, req.Size); err != nil {
		return err
	}
	buf := make([]byte, req.Size)
	n, err := h.f.ReadAt(buf, req.Offset)
	if err != nil && err != io.EOF {
		return errno(err)
	}
	resp.Data = buf[:n]
	return nil
}

// Write writes to the backing file at the requested offset.
func (h *Handle) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	if err := h.fs.delay(ctx, len(req.Data)); err != nil {
		return err
	}
	n, err := h.f.WriteAt(req.Data, req.Offset)
	resp.Size = n
	return errno(err)
}

// Flush is a round trip to the share; data is already in the backing file.
func (h *Handle) Flush(ctx context.Context, req *fuse.FlushRequest) error {
	return h.fs.delay(ctx, 0)
}

// Release closes the backing file.
func (h *Handle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	return errno(h.f.Close())
}

var (
	_ fs.FS                 = (*FS)(nil)
	_ fs.NodeStringLookuper = (*Dir)(nil)
	_ fs.HandleReadDirAller = (*Dir)(nil)
	_ fs.NodeCreater        = (*Dir)(nil)
	_ fs.NodeMkdirer        = (*Dir)(nil)
	_ fs.NodeRemover        = (*Dir)(nil)
	_ fs.NodeOpener         = (*File)(nil)
	_ fs.NodeSetattrer      = (*File)(nil)
	_ fs.NodeFsyncer        = (*File)(nil)
	_ fs.HandleReader       = (*Handle)(nil)
	_ fs.HandleWriter       = (*Handle)(nil)
	_ fs.HandleFlusher      = (*Handle)(nil)
	_ fs.HandleReleaser     = (*Handle)(nil)
)
