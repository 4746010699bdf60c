package util

import (
	"os"
	"path/filepath"
)

// TreeStats summarises a directory tree.
type TreeStats struct {
	Files int   `json:"files"`
	Dirs  int   `json:"dirs"`
	Bytes int64 `json:"bytes"`
}

// CountTree recursively counts the regular files, sub-directories and bytes
// below path. The root itself is not counted as a directory.
func CountTree(path string) (stats TreeStats, err error) {
	var info os.FileInfo
	info, err = os.Stat(path)
	if err != nil {
		return
	}
	if !info.IsDir() {
		err = ErrExpectedDirectory
		return
	}
	var files []os.DirEntry
	files, err = os.ReadDir(path)
	if err != nil {
		return
	}
	for _, f := range files {
		switch {
		case f.IsDir():
			stats.Dirs++
			sub, e := CountTree(filepath.Join(path, f.Name()))
			if e != nil {
				return stats, e
			}
			stats.Files += sub.Files
			stats.Dirs += sub.Dirs
			stats.Bytes += sub.Bytes
		case f.Type().IsRegular():
			fi, e := f.Info()
			if e != nil {
				return stats, e
			}
			stats.Files++
			stats.Bytes += fi.Size()
		}
	}
	return
}

// TreeFiles returns the slash-separated relative paths of every regular file
// below root, in walk order.
func TreeFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}
