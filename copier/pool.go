package copier

import (
	"context"
	"fmt"
	"sync"

	"github.com/dendrascience/copybench/util"
	"golang.org/x/sync/errgroup"
)

// copyFile is swapped out in tests.
var copyFile = util.CopyFile

type copyWorkerData struct {
	src  string
	dst  string
	name string
}

// copyOne runs a single copy, reporting a panic as ErrPool.
func copyOne(x copyWorkerData) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: worker panicked copying %s: %v", util.ErrPool, x.name, r)
		}
	}()
	return copyFile(x.src, x.dst, x.name)
}

func copyWorker(cwd <-chan copyWorkerData, errChan chan<- error, wg *sync.WaitGroup) {
	defer wg.Done()

	for x := range cwd {
		if err := copyOne(x); err != nil {
			errChan <- err
		}
	}
}

// NewPoolCopy returns a Func that spreads the files over a fixed pool of
// worker goroutines. Every file is attempted; once all workers have finished
// the first error seen, if any, is returned.
func NewPoolCopy(workers int) Func {
	workers = DefaultWorkers(workers)
	return func(src, dst string, names []string) error {
		cwdChan := make(chan copyWorkerData, workers)
		errChan := make(chan error, len(names))
		var wg sync.WaitGroup

		// Start workers
		wg.Add(workers)
		for range workers {
			go copyWorker(cwdChan, errChan, &wg)
		}

		for _, name := range names {
			cwdChan <- copyWorkerData{src: src, dst: dst, name: name}
		}
		close(cwdChan)

		wg.Wait()
		close(errChan)

		var first error
		for err := range errChan {
			if first == nil {
				first = err
			}
		}
		return first
	}
}

// NewFuturesCopy returns a Func that submits one task per file to an errgroup
// limited to workers concurrent tasks. The group is always waited on before
// returning. After the first failure no further files are submitted.
func NewFuturesCopy(workers int) Func {
	workers = DefaultWorkers(workers)
	return func(src, dst string, names []string) error {
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(workers)

		for _, name := range names {
			if ctx.Err() != nil {
				break
			}
			x := copyWorkerData{src: src, dst: dst, name: name}
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				return copyOne(x)
			})
		}
		return g.Wait()
	}
}
