package harness

import (
	"errors"
	"testing"
	"time"

	"github.com/dendrascience/copybench/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by the next step each time the work function runs.
type fakeClock struct {
	now   time.Time
	steps []time.Duration
	calls int
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) work() error {
	c.now = c.now.Add(c.steps[c.calls%len(c.steps)])
	c.calls++
	return nil
}

func TestMeasureAverage(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
		steps      []time.Duration
		want       Result
	}{
		{
			name:       "single iteration",
			iterations: 1,
			steps:      []time.Duration{40 * time.Millisecond},
			want: Result{
				Iterations: 1,
				Total:      40 * time.Millisecond,
				Average:    40 * time.Millisecond,
				Min:        40 * time.Millisecond,
				Max:        40 * time.Millisecond,
			},
		},
		{
			name:       "uneven iterations",
			iterations: 3,
			steps:      []time.Duration{10 * time.Millisecond, 50 * time.Millisecond, 30 * time.Millisecond},
			want: Result{
				Iterations: 3,
				Total:      90 * time.Millisecond,
				Average:    30 * time.Millisecond,
				Min:        10 * time.Millisecond,
				Max:        50 * time.Millisecond,
			},
		},
		{
			name:       "ten iterations",
			iterations: 10,
			steps:      []time.Duration{time.Second, 3 * time.Second},
			want: Result{
				Iterations: 10,
				Total:      20 * time.Second,
				Average:    2 * time.Second,
				Min:        time.Second,
				Max:        3 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(0, 0), steps: tt.steps}
			h := New(WithClock(clock.Now))

			got, err := h.Measure(tt.iterations, clock.work)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.iterations, clock.calls)
			assert.Equal(t, got.Total/time.Duration(got.Iterations), got.Average)
		})
	}
}

func TestMeasureRejectsZeroIterations(t *testing.T) {
	for _, n := range []int{0, -1} {
		called := false
		_, err := Measure(n, func() error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, ErrInvalidIterations)
		assert.ErrorIs(t, err, util.ErrConfiguration)
		assert.False(t, called, "work must not run for %d iterations", n)
	}
}

func TestMeasureAbortsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Measure(5, func() error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "iteration 2 of 5")
	assert.Equal(t, 2, calls)
}

func TestMeasureWallClock(t *testing.T) {
	r, err := Measure(2, func() error {
		time.Sleep(time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.Average, time.Millisecond)
	assert.Equal(t, r.Total/2, r.Average)
}
