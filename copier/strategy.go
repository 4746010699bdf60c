package copier

import (
	"fmt"
	"runtime"

	"github.com/dendrascience/copybench/util"
)

// Strategy names.
const (
	Sequential = "sequential"
	Tree       = "tree"
	Pool       = "pool"
	Futures    = "futures"
)

// Func copies the named files from src into dst.
type Func func(src, dst string, names []string) error

// Strategy is a named copy function.
type Strategy struct {
	Name        string
	Description string
	// CopiesTree is set for strategies that copy the whole source tree
	// instead of the FileSet.
	CopiesTree bool
	Copy       Func
}

// Names lists the strategy names in the order All returns them.
func Names() []string {
	return []string{Sequential, Tree, Pool, Futures}
}

// All returns the four strategies in canonical order. workers sizes the two
// pool strategies; zero or less means runtime.NumCPU().
func All(workers int) []Strategy {
	workers = DefaultWorkers(workers)
	return []Strategy{
		{
			Name:        Sequential,
			Description: "Sequential single-file copies",
			Copy:        CopySequential,
		},
		{
			Name:        Tree,
			Description: "Recursive tree copy",
			CopiesTree:  true,
			Copy:        CopyTree,
		},
		{
			Name:        Pool,
			Description: fmt.Sprintf("Worker pool map (%d workers)", workers),
			Copy:        NewPoolCopy(workers),
		},
		{
			Name:        Futures,
			Description: fmt.Sprintf("Scoped futures pool (%d workers)", workers),
			Copy:        NewFuturesCopy(workers),
		},
	}
}

// Select returns the strategies with the given names, in the order given.
// With no names it returns All(workers).
func Select(workers int, names ...string) ([]Strategy, error) {
	all := All(workers)
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Strategy, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	selected := make([]Strategy, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", util.ErrUnknownStrategy, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		selected = append(selected, s)
	}
	return selected, nil
}

// DefaultWorkers returns workers, or the host core count when workers < 1.
func DefaultWorkers(workers int) int {
	if workers < 1 {
		return runtime.NumCPU()
	}
	return workers
}

// CopySequential copies the files one at a time in input order. The first
// error aborts the remainder.
func CopySequential(src, dst string, names []string) error {
	for _, name := range names {
		if err := util.CopyFile(src, dst, name); err != nil {
			return err
		}
	}
	return nil
}

// CopyTree copies the entire src tree into dst. names is ignored.
func CopyTree(src, dst string, _ []string) error {
	return util.CopyTree(src, dst)
}
