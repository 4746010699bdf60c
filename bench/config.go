package bench

import (
	"fmt"

	"github.com/dendrascience/copybench/copier"
	"github.com/dendrascience/copybench/util"
)

// DefaultIterations matches the number of trials per strategy used when no
// count is configured.
const DefaultIterations = 10

// Config is everything a Driver needs to run one benchmark.
type Config struct {
	SourceDir  string   `json:"source_dir"`
	DestDir    string   `json:"dest_dir"`
	Iterations int      `json:"iterations"`
	Workers    int      `json:"workers"`              // 0 means one per CPU
	Strategies []string `json:"strategies,omitempty"` // empty means all
	Clean      bool     `json:"clean"`                // empty DestDir before each strategy
	Verify     bool     `json:"verify"`               // compare DestDir after each strategy
}

// Validate reports the first ConfigurationError in c.
func (c Config) Validate() error {
	switch {
	case c.SourceDir == "":
		return fmt.Errorf("%w: source directory is required", util.ErrConfiguration)
	case c.DestDir == "":
		return fmt.Errorf("%w: destination directory is required", util.ErrConfiguration)
	case c.Iterations < 1:
		return fmt.Errorf("%w: iterations must be at least 1, got %d", util.ErrConfiguration, c.Iterations)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", util.ErrConfiguration, c.Workers)
	case util.PathsOverlap(c.SourceDir, c.DestDir):
		return fmt.Errorf("%w: source %s and destination %s overlap", util.ErrConfiguration, c.SourceDir, c.DestDir)
	}
	if _, err := copier.Select(c.Workers, c.Strategies...); err != nil {
		return fmt.Errorf("%w: %w", util.ErrConfiguration, err)
	}
	return nil
}
