// Package harness measures the average wall-clock duration of a unit of work
// over repeated, strictly sequential invocations.
package harness

import (
	"fmt"
	"time"

	"github.com/dendrascience/copybench/util"
)

// ErrInvalidIterations is returned when asked to measure fewer than one
// iteration.
var ErrInvalidIterations = fmt.Errorf("%w: iteration count must be at least 1", util.ErrConfiguration)

// Func is a unit of work: invoked with no arguments, it reports only failure.
type Func func() error

// Result holds the timing of one measurement.
type Result struct {
	Iterations int           `json:"iterations"`
	Total      time.Duration `json:"total"`
	Average    time.Duration `json:"average"`
	Min        time.Duration `json:"min"`
	Max        time.Duration `json:"max"`
}

// Harness times Funcs. The zero value is not usable; call New.
type Harness struct {
	now func() time.Time
}

// Option configures a Harness.
type Option func(*Harness)

// WithClock replaces time.Now, which lets tests control elapsed time.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) {
		h.now = now
	}
}

// New returns a Harness using the wall clock.
func New(opts ...Option) *Harness {
	h := &Harness{now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Measure invokes fn iterations times, one after the other, and returns the
// total and mean elapsed wall time. The first failing invocation aborts the
// measurement.
func (h *Harness) Measure(iterations int, fn Func) (Result, error) {
	if iterations < 1 {
		return Result{}, ErrInvalidIterations
	}

	r := Result{Iterations: iterations}
	for i := range iterations {
		start := h.now()
		err := fn()
		elapsed := h.now().Sub(start)
		if err != nil {
			return Result{}, fmt.Errorf("iteration %d of %d: %w", i+1, iterations, err)
		}
		r.Total += elapsed
		if i == 0 || elapsed < r.Min {
			r.Min = elapsed
		}
		if elapsed > r.Max {
			r.Max = elapsed
		}
	}
	r.Average = r.Total / time.Duration(iterations)
	return r, nil
}

// Measure times fn with a wall-clock Harness.
func Measure(iterations int, fn Func) (Result, error) {
	return New().Measure(iterations, fn)
}
