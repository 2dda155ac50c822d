package report

import (
	"io"
	"time"

	"github.com/nao1215/phishscan/internal/model"
)

// Result is one scanned URL as shown in a report.
type Result struct {
	// URL is the input as entered.
	URL string `json:"url"`

	// Outcome is nil when the URL was rejected.
	Outcome *model.ScanOutcome `json:"outcome,omitempty"`

	// Error is the validation or scan error, if any.
	Error string `json:"error,omitempty"`

	// Saved reports whether the outcome went to the history store.
	Saved bool `json:"saved"`

	// PreviousScans is how often the signed-in user scanned this URL before.
	PreviousScans int `json:"previous_scans"`

	// Interrupted is set when the scan timed out or was cancelled before
	// it finished. Outcome is kept if classification had completed.
	Interrupted bool `json:"interrupted,omitempty"`
}

// Summary counts results per status tier. Interrupted counts every result
// cut short by cancellation, whether or not it was classified.
type Summary struct {
	Total       int `json:"total"`
	Safe        int `json:"safe"`
	Warning     int `json:"warning"`
	Danger      int `json:"danger"`
	Invalid     int `json:"invalid"`
	Interrupted int `json:"interrupted"`
}

// Threats returns the number of warning and danger results.
func (s Summary) Threats() int {
	return s.Warning + s.Danger
}

// ScanReport is the output of one scan command.
type ScanReport struct {
	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Results are in input order.
	Results []Result `json:"results"`

	// Summary counts the results.
	Summary Summary `json:"summary"`
}

// NewScanReport builds a report and its summary from results.
func NewScanReport(results []Result) *ScanReport {
	r := &ScanReport{
		GeneratedAt: time.Now(),
		Results:     results,
	}
	for _, res := range results {
		r.Summary.Total++
		if res.Interrupted {
			r.Summary.Interrupted++
		}
		if res.Outcome == nil {
			if !res.Interrupted {
				r.Summary.Invalid++
			}
			continue
		}
		switch res.Outcome.Status {
		case model.StatusDanger:
			r.Summary.Danger++
		case model.StatusWarning:
			r.Summary.Warning++
		default:
			r.Summary.Safe++
		}
	}
	return r
}

// HasThreats reports whether any URL was rated warning or danger.
func (r *ScanReport) HasThreats() bool {
	return r.Summary.Threats() > 0
}

// History is a user's list of saved scans, newest first.
type History struct {
	UserID  string              `json:"user_id"`
	Records []*model.ScanRecord `json:"records"`
}

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the results of a scan command.
	Write(report *ScanReport) (int, error)

	// WriteHistory outputs saved scans.
	WriteHistory(history *History) (int, error)

	// WriteStats outputs the dashboard summary.
	WriteStats(stats *model.Stats) (int, error)
}

// MultiWriter writes to multiple Writers. It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write implements Writer.
func (m *MultiWriter) Write(report *ScanReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(report) })
}

// WriteHistory implements Writer.
func (m *MultiWriter) WriteHistory(history *History) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteHistory(history) })
}

// WriteStats implements Writer.
func (m *MultiWriter) WriteStats(stats *model.Stats) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteStats(stats) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// dateLayout is the timestamp format used in text and Markdown reports.
const dateLayout = "2006-01-02 15:04:05 MST"
