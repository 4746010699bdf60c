package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dendrascience/copybench/util"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// TimingResult is the outcome of measuring one strategy.
type TimingResult struct {
	Strategy    string          `json:"strategy"`
	Description string          `json:"description"`
	Iterations  int             `json:"iterations"`
	Total       time.Duration   `json:"total_ns"`
	Average     time.Duration   `json:"average_ns"`
	Min         time.Duration   `json:"min_ns"`
	Max         time.Duration   `json:"max_ns"`
	Bytes       int64           `json:"bytes"` // copied per iteration
	Mismatches  []util.Mismatch `json:"mismatches,omitempty"`
	Err         error           `json:"-"`
	Error       string          `json:"error,omitempty"`
}

// Failed reports whether the strategy errored or left a wrong destination.
func (r TimingResult) Failed() bool {
	return r.Err != nil || len(r.Mismatches) > 0
}

// Throughput returns the average bytes copied per second, or 0 when unknown.
func (r TimingResult) Throughput() float64 {
	if r.Average <= 0 || r.Failed() {
		return 0
	}
	return float64(r.Bytes) / r.Average.Seconds()
}

// Report is the full outcome of one Driver run.
type Report struct {
	ID       uuid.UUID      `json:"id"`
	Version  string         `json:"version"`
	Started  time.Time      `json:"started"`
	Finished time.Time      `json:"finished"`
	Config   Config         `json:"config"`
	FileSet  util.FileSet   `json:"file_set"`
	Bytes    int64          `json:"bytes"` // FileSet size
	Tree     util.TreeStats `json:"tree"`  // whole source tree
	Results  []TimingResult `json:"results"`
}

// Failed reports whether any strategy failed.
func (r Report) Failed() bool {
	for _, res := range r.Results {
		if res.Failed() {
			return true
		}
	}
	return false
}

// Fastest returns the successful result with the lowest average.
func (r Report) Fastest() (TimingResult, bool) {
	var best TimingResult
	found := false
	for _, res := range r.Results {
		if res.Failed() {
			continue
		}
		if !found || res.Average < best.Average {
			best = res
			found = true
		}
	}
	return best, found
}

// WriteJSON encodes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// FormatRate renders bytes per second, e.g. "12 MB/s".
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(bytesPerSecond)) + "/s"
}

// formatResultLine is the one line printed per strategy as it finishes.
func formatResultLine(n int, r TimingResult) string {
	if r.Err != nil {
		return fmt.Sprintf("Method %d (%s): failed: %v", n, r.Strategy, r.Err)
	}
	line := fmt.Sprintf("Method %d (%s): %s results in an average time of %s over %d iterations (%s)",
		n, r.Strategy, r.Description, r.Average, r.Iterations, FormatRate(r.Throughput()))
	if len(r.Mismatches) > 0 {
		line += fmt.Sprintf(", %d files differ at the destination", len(r.Mismatches))
	}
	return line
}

// strategyColor picks a stable terminal colour for a strategy name.
func strategyColor(name string) lipgloss.Color {
	// skip the 16 basic colours and the greyscale ramp of the 256 palette
	return lipgloss.Color(strconv.Itoa(16 + util.BucketForName(name, 216)))
}

// WriteSummary renders the results as a table.
func (r Report) WriteSummary(w io.Writer) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		status := "ok"
		switch {
		case res.Err != nil:
			status = "failed"
		case len(res.Mismatches) > 0:
			status = fmt.Sprintf("%d mismatches", len(res.Mismatches))
		}
		rows = append(rows, []string{
			res.Strategy,
			strconv.Itoa(res.Iterations),
			res.Average.Round(time.Microsecond).String(),
			res.Min.Round(time.Microsecond).String(),
			res.Max.Round(time.Microsecond).String(),
			FormatRate(res.Throughput()),
			status,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STRATEGY", "ITER", "AVERAGE", "MIN", "MAX", "THROUGHPUT", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 && row >= 0 && row < len(rows) {
				return cellStyle.Foreground(strategyColor(rows[row][0]))
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	if err != nil {
		return err
	}
	if best, ok := r.Fastest(); ok {
		_, err = fmt.Fprintf(w, "Fastest: %s (%s)\n", best.Strategy, best.Average.Round(time.Microsecond))
	}
	return err
}
