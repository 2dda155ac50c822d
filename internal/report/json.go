package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/phishscan/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is added to every document when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion wraps every document with the tool version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// document wraps a payload with version information.
type document struct {
	Version string `json:"version"`
	Data    any    `json:"data"`
}

// Write implements Writer.
func (w *JSONWriter) Write(report *ScanReport) (int, error) {
	return w.writeJSON(report)
}

// WriteHistory implements Writer.
func (w *JSONWriter) WriteHistory(history *History) (int, error) {
	if history.Records == nil {
		history = &History{UserID: history.UserID, Records: []*model.ScanRecord{}}
	}
	return w.writeJSON(history)
}

// statsJSON adds derived fields to the stats payload.
type statsJSON struct {
	*model.Stats
	ThreatsBlocked int     `json:"threats_blocked"`
	DetectionRate  float64 `json:"detection_rate"`
}

// WriteStats implements Writer.
func (w *JSONWriter) WriteStats(stats *model.Stats) (int, error) {
	return w.writeJSON(statsJSON{
		Stats:          stats,
		ThreatsBlocked: stats.ThreatsBlocked(),
		DetectionRate:  stats.DetectionRate(),
	})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	if w.version != "" {
		v = document{Version: w.version, Data: v}
	}

	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
