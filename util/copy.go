package util

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies srcDir/name to dstDir/name. The destination directory must
// exist. An existing destination file is truncated and overwritten, and the
// source permission bits are applied to the copy.
func CopyFile(srcDir, dstDir, name string) error {
	return copyPath(filepath.Join(srcDir, name), filepath.Join(dstDir, name))
}

func copyPath(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrExpectedFile, src)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %w", ErrFileAccess, dst, cerr)
		}
	}()

	// io.Copy uses copy_file_range on linux when both ends are regular files
	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("%w: copying %s: %w", ErrFileAccess, src, err)
	}
	// O_TRUNC does not reset the mode of a file that already existed
	if err = out.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return nil
}

// CopyTree recursively copies every directory and regular file below src
// into dst, creating dst if needed. Existing files are overwritten. Symlinks
// and special files are skipped.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	if !info.IsDir() {
		return ErrExpectedDirectory
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("%w: %w", ErrFileAccess, walkErr)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			dinfo, err := d.Info()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrFileAccess, err)
			}
			if err := os.MkdirAll(target, dinfo.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("%w: %w", ErrFileAccess, err)
			}
			return nil
		case d.Type().IsRegular():
			return copyPath(path, target)
		default:
			return nil
		}
	})
}

// EnsureDir creates dir if it does not exist and checks that it is a directory.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return ErrExpectedDirectory
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return nil
}

// CleanDir removes every entry inside dir, leaving dir itself in place.
func CleanDir(dir string) error {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	var errs []error
	for _, d := range dirents {
		if err := os.RemoveAll(filepath.Join(dir, d.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return nil
}
