package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetFileHash(t *testing.T) {
	tmpDir := t.TempDir()

	emptyFile := filepath.Join(tmpDir, "empty.txt")
	os.WriteFile(emptyFile, []byte{}, 0o644)

	helloFile := filepath.Join(tmpDir, "hello.txt")
	os.WriteFile(helloFile, []byte("hello world"), 0o644)

	subDir := filepath.Join(tmpDir, "subdir")
	os.Mkdir(subDir, 0o755)

	tests := []struct {
		name     string
		path     string
		wantHash string
		wantErr  error
	}{
		{
			name:     "empty file",
			path:     emptyFile,
			wantHash: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "hello world file",
			path:     helloFile,
			wantHash: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
		{
			name:    "directory returns error",
			path:    subDir,
			wantErr: ErrExpectedFile,
		},
		{
			name:    "non-existent file",
			path:    filepath.Join(tmpDir, "nonexistent.txt"),
			wantErr: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHash, err := GetFileHash(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetFileHash() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetFileHash() unexpected error = %v", err)
			}
			if gotHash != tt.wantHash {
				t.Errorf("GetFileHash() = %v, want %v", gotHash, tt.wantHash)
			}
		})
	}
}

func TestGetHash(t *testing.T) {
	got, err := GetHash(strings.NewReader("hello\n"))
	if err != nil {
		t.Fatalf("GetHash() error = %v", err)
	}
	want := "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"
	if got != want {
		t.Errorf("GetHash() = %v, want %v", got, want)
	}
}

func TestBucketForName(t *testing.T) {
	for _, name := range []string{"a.txt", "b.txt", "0001.bin", ""} {
		b := BucketForName(name, 8)
		if b < 0 || b >= 8 {
			t.Errorf("BucketForName(%q, 8) = %d, out of range", name, b)
		}
		if again := BucketForName(name, 8); again != b {
			t.Errorf("BucketForName(%q) not stable: %d then %d", name, b, again)
		}
	}
	if b := BucketForName("anything", 1); b != 0 {
		t.Errorf("BucketForName with one bucket = %d, want 0", b)
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestVerifyFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFiles(t, src, map[string]string{
		"same.txt":    "identical",
		"changed.txt": "original",
		"missing.txt": "only in source",
	})
	writeFiles(t, dst, map[string]string{
		"same.txt":    "identical",
		"changed.txt": "tampered",
	})
	os.Mkdir(filepath.Join(dst, "dir.txt"), 0o755)
	writeFiles(t, src, map[string]string{"dir.txt": "file in source"})

	mismatches, err := VerifyFiles(src, dst, []string{"same.txt", "changed.txt", "missing.txt", "dir.txt"})
	if err != nil {
		t.Fatalf("VerifyFiles() error = %v", err)
	}

	want := []Mismatch{
		{Name: "changed.txt", Reason: "content differs"},
		{Name: "dir.txt", Reason: "destination is a directory"},
		{Name: "missing.txt", Reason: "missing from destination"},
	}
	if len(mismatches) != len(want) {
		t.Fatalf("VerifyFiles() = %v, want %v", mismatches, want)
	}
	for i := range want {
		if mismatches[i] != want[i] {
			t.Errorf("mismatch[%d] = %v, want %v", i, mismatches[i], want[i])
		}
	}
}

func TestVerifyFiles_MissingSource(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	_, err := VerifyFiles(src, dst, []string{"ghost.txt"})
	if !errors.Is(err, ErrFileAccess) {
		t.Errorf("VerifyFiles() error = %v, want ErrFileAccess", err)
	}
}

func TestVerifyFiles_Empty(t *testing.T) {
	mismatches, err := VerifyFiles(t.TempDir(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("VerifyFiles() error = %v", err)
	}
	if len(mismatches) != 0 {
		t.Errorf("VerifyFiles() = %v, want none", mismatches)
	}
}

func TestVerifyTree(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	files := map[string]string{
		"top.txt":          "top",
		"nested/inner.txt": "inner",
		"nested/deep/x":    "x",
	}
	writeFiles(t, src, files)
	writeFiles(t, dst, files)
	writeFiles(t, dst, map[string]string{"extra.txt": "ignored"})

	mismatches, err := VerifyTree(src, dst)
	if err != nil {
		t.Fatalf("VerifyTree() error = %v", err)
	}
	if len(mismatches) != 0 {
		t.Errorf("VerifyTree() = %v, want none", mismatches)
	}

	os.Remove(filepath.Join(dst, "nested", "deep", "x"))
	mismatches, err = VerifyTree(src, dst)
	if err != nil {
		t.Fatalf("VerifyTree() error = %v", err)
	}
	if len(mismatches) != 1 || mismatches[0].Name != "nested/deep/x" {
		t.Errorf("VerifyTree() = %v, want nested/deep/x missing", mismatches)
	}
}
