package copier

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/dendrascience/copybench/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSource(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestStrategiesCopyFileSet(t *testing.T) {
	files := map[string]string{
		"a.txt": "0123456789",
		"b.txt": "",
		"c.bin": string([]byte{0x00, 0x01, 0xff}),
	}

	for _, s := range All(2) {
		t.Run(s.Name, func(t *testing.T) {
			src := seedSource(t, files)
			dst := t.TempDir()
			fileSet, err := util.ListFileSet(src)
			require.NoError(t, err)

			require.NoError(t, s.Copy(src, dst, fileSet))

			for name, content := range files {
				got, err := os.ReadFile(filepath.Join(dst, name))
				require.NoError(t, err, "file %s", name)
				assert.Equal(t, content, string(got), "file %s", name)
			}

			mismatches, err := util.VerifyFiles(src, dst, fileSet)
			require.NoError(t, err)
			assert.Empty(t, mismatches)
		})
	}
}

func TestStrategiesTwiceIsIdempotent(t *testing.T) {
	files := map[string]string{"a.txt": "abc", "b.txt": "def"}
	for _, s := range All(3) {
		t.Run(s.Name, func(t *testing.T) {
			src := seedSource(t, files)
			dst := t.TempDir()
			names := []string{"a.txt", "b.txt"}

			require.NoError(t, s.Copy(src, dst, names))
			first, err := util.TreeFiles(dst)
			require.NoError(t, err)

			require.NoError(t, s.Copy(src, dst, names))
			second, err := util.TreeFiles(dst)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			mismatches, err := util.VerifyFiles(src, dst, names)
			require.NoError(t, err)
			assert.Empty(t, mismatches)
		})
	}
}

func TestStrategiesEmptyFileSet(t *testing.T) {
	for _, s := range All(0) {
		t.Run(s.Name, func(t *testing.T) {
			src := t.TempDir()
			dst := t.TempDir()
			require.NoError(t, s.Copy(src, dst, nil))

			entries, err := os.ReadDir(dst)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestTreeIgnoresFileSet(t *testing.T) {
	src := seedSource(t, map[string]string{
		"listed.txt":         "listed",
		"unlisted.txt":       "unlisted",
		"nested/dir/deep.js": "{}",
	})
	dst := t.TempDir()

	require.NoError(t, CopyTree(src, dst, []string{"listed.txt"}))

	mismatches, err := util.VerifyTree(src, dst)
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	// and with an empty list
	dst2 := t.TempDir()
	require.NoError(t, CopyTree(src, dst2, nil))
	files, err := util.TreeFiles(dst2)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestStrategiesMissingSourceFile(t *testing.T) {
	for _, s := range All(2) {
		if s.CopiesTree {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			src := seedSource(t, map[string]string{"a.txt": "a"})
			dst := t.TempDir()

			err := s.Copy(src, dst, []string{"a.txt", "ghost.txt"})
			assert.ErrorIs(t, err, util.ErrFileAccess)
		})
	}
}

func TestStrategiesMissingDestination(t *testing.T) {
	for _, s := range All(2) {
		if s.CopiesTree {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			src := seedSource(t, map[string]string{"a.txt": "a"})
			dst := filepath.Join(t.TempDir(), "does-not-exist")

			err := s.Copy(src, dst, []string{"a.txt"})
			assert.ErrorIs(t, err, util.ErrFileAccess)
		})
	}
}

func TestSequentialStopsAtFirstError(t *testing.T) {
	src := seedSource(t, map[string]string{"a.txt": "a", "c.txt": "c"})
	dst := t.TempDir()

	err := CopySequential(src, dst, []string{"a.txt", "b.txt", "c.txt"})
	require.ErrorIs(t, err, util.ErrFileAccess)

	_, err = os.Stat(filepath.Join(dst, "a.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dst, "c.txt"))
	assert.True(t, os.IsNotExist(err), "c.txt should not have been copied")
}

func TestPoolAttemptsEveryFile(t *testing.T) {
	src := seedSource(t, map[string]string{"a.txt": "a", "c.txt": "c", "d.txt": "d"})
	dst := t.TempDir()

	err := NewPoolCopy(2)(src, dst, []string{"a.txt", "b.txt", "c.txt", "d.txt"})
	require.ErrorIs(t, err, util.ErrFileAccess)

	for _, name := range []string{"a.txt", "c.txt", "d.txt"} {
		_, err := os.Stat(filepath.Join(dst, name))
		assert.NoError(t, err, "%s should still be copied", name)
	}
}

func TestPoolWorkerPanicBecomesPoolError(t *testing.T) {
	orig := copyFile
	t.Cleanup(func() { copyFile = orig })

	var calls atomic.Int32
	copyFile = func(src, dst, name string) error {
		calls.Add(1)
		if name == "boom" {
			panic("disk on fire")
		}
		return nil
	}

	names := []string{"one", "boom", "two", "three"}
	for _, fn := range []Func{NewPoolCopy(2), NewFuturesCopy(2)} {
		calls.Store(0)
		err := fn("src", "dst", names)
		require.ErrorIs(t, err, util.ErrPool)
		assert.Contains(t, err.Error(), "disk on fire")
		assert.LessOrEqual(t, int(calls.Load()), len(names))
	}
}

func TestPoolUsesConfiguredWorkers(t *testing.T) {
	orig := copyFile
	t.Cleanup(func() { copyFile = orig })

	var running, peak atomic.Int32
	release := make(chan struct{})
	copyFile = func(src, dst, name string) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return nil
	}

	names := []string{"1", "2", "3", "4", "5", "6"}
	for _, fn := range []Func{NewPoolCopy(3), NewFuturesCopy(3)} {
		peak.Store(0)
		done := make(chan error, 1)
		go func() { done <- fn("src", "dst", names) }()
		require.Eventually(t, func() bool { return running.Load() == 3 }, 2e9, 1e6)
		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, int32(3), peak.Load())
		release = make(chan struct{})
	}
}

func TestSelect(t *testing.T) {
	all, err := Select(4)
	require.NoError(t, err)
	require.Len(t, all, 4)
	var names []string
	for _, s := range all {
		names = append(names, s.Name)
	}
	assert.Equal(t, Names(), names)

	subset, err := Select(4, Futures, Sequential, Futures)
	require.NoError(t, err)
	require.Len(t, subset, 2)
	assert.Equal(t, Futures, subset[0].Name)
	assert.Equal(t, Sequential, subset[1].Name)

	_, err = Select(4, "rsync")
	assert.ErrorIs(t, err, util.ErrUnknownStrategy)
}

func TestDefaultWorkers(t *testing.T) {
	assert.Equal(t, 7, DefaultWorkers(7))
	assert.Greater(t, DefaultWorkers(0), 0)
	assert.Greater(t, DefaultWorkers(-3), 0)
}
