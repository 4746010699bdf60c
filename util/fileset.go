package util

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileSet is the ordered list of file names discovered in a source directory.
// It is read once per run and never mutated afterwards.
type FileSet []string

// ListFileSet returns the names of the regular files directly inside dir,
// sorted lexically. Sub-directories, symlinks and other special entries are
// skipped: only the tree copy reaches into sub-directories.
func ListFileSet(dir string) (FileSet, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	if !info.IsDir() {
		return nil, ErrExpectedDirectory
	}
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrFileAccess, dir, err)
	}
	names := make(FileSet, 0, len(dirents))
	for _, d := range dirents {
		if !d.Type().IsRegular() {
			continue
		}
		names = append(names, d.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Len returns the number of files in the set.
func (f FileSet) Len() int {
	return len(f)
}

// Names returns a copy of the names so callers can't mutate the set.
func (f FileSet) Names() []string {
	out := make([]string, len(f))
	copy(out, f)
	return out
}

// FileSetSize returns the total size in bytes of the named files in dir.
func FileSetSize(dir string, names []string) (int64, error) {
	var total int64
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrFileAccess, err)
		}
		total += info.Size()
	}
	return total, nil
}
