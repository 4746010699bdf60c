package bench

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dendrascience/copybench/copier"
	"github.com/dendrascience/copybench/harness"
	"github.com/dendrascience/copybench/util"
	"github.com/dendrascience/copybench/version"
	"github.com/google/uuid"
)

// ErrStrategyFailed is returned by Run when at least one strategy failed.
// The returned Report is still complete.
var ErrStrategyFailed = errors.New("one or more copy strategies failed")

// Driver runs every configured strategy through the Harness, one after the
// other.
type Driver struct {
	cfg        Config
	out        io.Writer
	harness    *harness.Harness
	strategies []copier.Strategy
}

// Option configures a Driver.
type Option func(*Driver)

// WithOutput sets where progress lines are printed. Defaults to io.Discard.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		d.out = w
	}
}

// WithHarness replaces the wall-clock Harness.
func WithHarness(h *harness.Harness) Option {
	return func(d *Driver) {
		d.harness = h
	}
}

// WithStrategies replaces the strategy set selected from the config.
func WithStrategies(s ...copier.Strategy) Option {
	return func(d *Driver) {
		d.strategies = s
	}
}

// New validates cfg and returns a Driver for it.
func New(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategies, err := copier.Select(cfg.Workers, cfg.Strategies...)
	if err != nil {
		return nil, err
	}
	d := &Driver{
		cfg:        cfg,
		out:        io.Discard,
		harness:    harness.New(),
		strategies: strategies,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the driver's configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// Run reads the FileSet once and measures each strategy in turn. A failing
// strategy is recorded in its TimingResult and the remaining strategies still
// run; in that case Run returns the Report together with ErrStrategyFailed.
func (d *Driver) Run() (Report, error) {
	report := Report{
		ID:      uuid.New(),
		Version: version.GetVersion(),
		Started: time.Now(),
		Config:  d.cfg,
	}

	if err := util.EnsureDir(d.cfg.DestDir); err != nil {
		return report, fmt.Errorf("preparing destination: %w", err)
	}
	lock, err := lockDestination(d.cfg.DestDir)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Printf("Warning: failed to release destination lock: %v", err)
		}
	}()

	fileSet, err := util.ListFileSet(d.cfg.SourceDir)
	if err != nil {
		return report, fmt.Errorf("reading source directory: %w", err)
	}
	report.FileSet = fileSet
	if report.Bytes, err = util.FileSetSize(d.cfg.SourceDir, fileSet); err != nil {
		return report, err
	}
	if report.Tree, err = util.CountTree(d.cfg.SourceDir); err != nil {
		return report, fmt.Errorf("%w: %w", util.ErrFileAccess, err)
	}

	fmt.Fprintf(d.out, "Copying %d files...\n", fileSet.Len())
	for _, name := range fileSet {
		fmt.Fprintf(d.out, "    %s\n", name)
	}
	fmt.Fprintln(d.out)

	for i, s := range d.strategies {
		res := d.runStrategy(s, fileSet, report)
		report.Results = append(report.Results, res)
		fmt.Fprintln(d.out, formatResultLine(i+1, res))
	}
	report.Finished = time.Now()

	if report.Failed() {
		return report, ErrStrategyFailed
	}
	return report, nil
}

func (d *Driver) runStrategy(s copier.Strategy, fileSet util.FileSet, report Report) TimingResult {
	res := TimingResult{
		Strategy:    s.Name,
		Description: s.Description,
		Iterations:  d.cfg.Iterations,
		Bytes:       report.Bytes,
	}
	if s.CopiesTree {
		res.Bytes = report.Tree.Bytes
	}

	fail := func(err error) TimingResult {
		res.Err = err
		res.Error = err.Error()
		return res
	}

	if d.cfg.Clean {
		if err := util.CleanDir(d.cfg.DestDir); err != nil {
			return fail(fmt.Errorf("cleaning destination: %w", err))
		}
	}

	// every strategy sees its own copy of the names
	names := fileSet.Names()
	src, dst := d.cfg.SourceDir, d.cfg.DestDir
	measured, err := d.harness.Measure(d.cfg.Iterations, func() error {
		return s.Copy(src, dst, names)
	})
	if err != nil {
		return fail(fmt.Errorf("%s: %w", s.Name, err))
	}
	res.Total = measured.Total
	res.Average = measured.Average
	res.Min = measured.Min
	res.Max = measured.Max

	if d.cfg.Verify {
		var mismatches []util.Mismatch
		if s.CopiesTree {
			mismatches, err = util.VerifyTree(src, dst)
		} else {
			mismatches, err = util.VerifyFiles(src, dst, fileSet)
		}
		if err != nil {
			return fail(fmt.Errorf("%s: verifying destination: %w", s.Name, err))
		}
		res.Mismatches = mismatches
	}
	return res
}
