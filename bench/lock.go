package bench

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dendrascience/copybench/util"
	"github.com/gofrs/flock"
)

// lockPath returns the lock file used for dest. It lives in the temp dir so
// that the destination only ever contains copied files.
func lockPath(dest string) string {
	abs, err := filepath.Abs(dest)
	if err != nil {
		abs = filepath.Clean(dest)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), fmt.Sprintf("copybench-%x.lock", sum[:8]))
}

// lockDestination takes an exclusive advisory lock for dest. It fails with
// util.ErrDestinationBusy when another process holds it.
func lockDestination(dest string) (*flock.Flock, error) {
	fl := flock.New(lockPath(dest))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking destination %s: %w", dest, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", util.ErrDestinationBusy, dest)
	}
	return fl, nil
}
