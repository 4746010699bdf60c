package util

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/taigrr/colorhash"
)

// Mismatch describes a destination file that does not match its source.
type Mismatch struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (m Mismatch) String() string {
	return m.Name + ": " + m.Reason
}

// Hashes a file and returns the hash as a hex string
func GetFileHash(path string) (hash string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", ErrExpectedFile
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return GetHash(file)
}

// GetHash calculates the SHA-256 hash of data from an io.Reader.
// It returns the hash as a hexadecimal string.
func GetHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// BucketForName spreads names over a fixed number of buckets using a colour
// hash of the name, so the same name always lands in the same bucket.
func BucketForName(name string, buckets int) int {
	if buckets <= 1 {
		return 0
	}
	h := colorhash.HashString(name)
	if h < 0 {
		h = -h
	}
	return h % buckets
}

type verifyWorkerData struct {
	name string
	src  string
	dst  string
}

func verifyWorker(vwd <-chan verifyWorkerData, c chan<- Mismatch, errChan chan<- error, wg *sync.WaitGroup) {
	defer wg.Done()

	for x := range vwd {
		m, err := compareFile(x)
		if err != nil {
			errChan <- err
			continue
		}
		if m != nil {
			c <- *m
		}
	}
}

func compareFile(x verifyWorkerData) (*Mismatch, error) {
	srcHash, err := GetFileHash(x.src)
	if err != nil {
		return nil, fmt.Errorf("%w: hashing source %s: %w", ErrFileAccess, x.name, err)
	}
	dstHash, err := GetFileHash(x.dst)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &Mismatch{Name: x.name, Reason: "missing from destination"}, nil
	case errors.Is(err, ErrExpectedFile):
		return &Mismatch{Name: x.name, Reason: "destination is a directory"}, nil
	case err != nil:
		return nil, fmt.Errorf("%w: hashing destination %s: %w", ErrFileAccess, x.name, err)
	}
	if srcHash != dstHash {
		return &Mismatch{Name: x.name, Reason: "content differs"}, nil
	}
	return nil, nil
}

// VerifyFiles checks that every name in names exists under dst with content
// identical to the file of the same name under src. Files are hashed
// concurrently. The returned mismatches are sorted by name.
func VerifyFiles(src, dst string, names []string) ([]Mismatch, error) {
	mismatches := []Mismatch{}
	mismatchChan := make(chan Mismatch, runtime.NumCPU())
	errChan := make(chan error, runtime.NumCPU())
	vwdChan := make(chan verifyWorkerData, runtime.NumCPU())
	var wg sync.WaitGroup

	// Start workers
	wg.Add(runtime.NumCPU())
	for range runtime.NumCPU() {
		go verifyWorker(vwdChan, mismatchChan, errChan, &wg)
	}

	// Feed work
	go func() {
		defer close(vwdChan)
		for _, name := range names {
			vwdChan <- verifyWorkerData{
				name: name,
				src:  filepath.Join(src, filepath.FromSlash(name)),
				dst:  filepath.Join(dst, filepath.FromSlash(name)),
			}
		}
	}()

	// Process results
	go func() {
		wg.Wait()
		close(mismatchChan)
		close(errChan)
	}()

	var errs []error
	mOpen, eOpen := true, true
	for mOpen || eOpen {
		select {
		case m, ok := <-mismatchChan:
			if !ok {
				mOpen = false
				mismatchChan = nil
				continue
			}
			mismatches = append(mismatches, m)
		case err, ok := <-errChan:
			if !ok {
				eOpen = false
				errChan = nil
				continue
			}
			errs = append(errs, err)
		}
	}
	sort.Slice(mismatches, func(i, j int) bool {
		return mismatches[i].Name < mismatches[j].Name
	})
	return mismatches, errors.Join(errs...)
}

// VerifyTree checks that every regular file below src exists under dst with
// identical content. Extra files in dst are ignored.
func VerifyTree(src, dst string) ([]Mismatch, error) {
	names, err := TreeFiles(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return VerifyFiles(src, dst, names)
}
