package sweep

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

//////
// Error aggregation.
//////

// maxRecordedDuration bounds the duration histogram. Longer units are
// recorded at the bound.
const maxRecordedDuration = 7 * 24 * time.Hour

// DurationStats summarizes how long units took.
type DurationStats struct {
	Count int64
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
}

// Report is the outcome of a run.
type Report struct {
	// RunID identifies the run in logs.
	RunID string

	// Mode the run was executed in.
	Mode Mode

	// Total is the number of units the run had to execute.
	Total int

	// Succeeded is the number of units whose task function returned nil.
	Succeeded int

	// Failures holds one record per failed unit, ordered by index.
	Failures []Failure

	// Durations summarizes unit wall times, failures included.
	Durations DurationStats
}

// Failed reports whether any unit failed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Err joins every failure into one error, nil when all units succeeded.
func (r *Report) Err() error {
	if !r.Failed() {
		return nil
	}

	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, &TaskError{Failure: f})
	}

	return errors.Join(errs...)
}

// Summary renders the report for humans: counts, then one line per failure.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "run %s (%s): %d/%d succeeded, %d failed", r.RunID, r.Mode, r.Succeeded, r.Total, len(r.Failures))

	for _, f := range r.Failures {
		b.WriteString("\n  ")
		b.WriteString(f.String())
	}

	return b.String()
}

// aggregator collects per-unit outcomes from concurrent workers.
type aggregator struct {
	mu     sync.Mutex
	report Report
	done   int
	hist   *hdrhistogram.Histogram
}

func newAggregator(runID string, mode Mode, total int) *aggregator {
	return &aggregator{
		report: Report{
			RunID:    runID,
			Mode:     mode,
			Total:    total,
			Failures: []Failure{},
		},
		hist: hdrhistogram.New(1, maxRecordedDuration.Microseconds(), 3),
	}
}

// record stores the outcome of one unit and returns how many units are done.
func (a *aggregator) record(index int, name string, took time.Duration, err error) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.done++

	if err != nil {
		a.report.Failures = append(a.report.Failures, Failure{Index: index, Name: name, Err: err})
	} else {
		a.report.Succeeded++
	}

	us := took.Microseconds()
	if us < 1 {
		us = 1
	}

	if us > maxRecordedDuration.Microseconds() {
		us = maxRecordedDuration.Microseconds()
	}

	// Values are clamped to the histogram bounds.
	_ = a.hist.RecordValue(us)

	return a.done
}

// completed returns how many units have been recorded.
func (a *aggregator) completed() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.done
}

// finish freezes the report.
func (a *aggregator) finish() *Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	sort.Slice(a.report.Failures, func(i, j int) bool {
		return a.report.Failures[i].Index < a.report.Failures[j].Index
	})

	if count := a.hist.TotalCount(); count > 0 {
		a.report.Durations = DurationStats{
			Count: count,
			Mean:  time.Duration(a.hist.Mean()) * time.Microsecond,
			P50:   time.Duration(a.hist.ValueAtQuantile(50)) * time.Microsecond,
			P95:   time.Duration(a.hist.ValueAtQuantile(95)) * time.Microsecond,
			Max:   time.Duration(a.hist.Max()) * time.Microsecond,
		}
	}

	report := a.report

	return &report
}
