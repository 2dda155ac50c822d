package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/nao1215/phishscan/internal/model"
)

// Severity is the kind of a notification.
type Severity string

const (
	// SeverityInfo is a neutral message.
	SeverityInfo Severity = "info"

	// SeveritySuccess reports a good result.
	SeveritySuccess Severity = "success"

	// SeverityWarning reports something that needs attention.
	SeverityWarning Severity = "warning"

	// SeverityError reports a failure.
	SeverityError Severity = "error"
)

// String returns the severity as a lowercase word.
func (s Severity) String() string {
	return string(s)
}

// SeverityForStatus maps a risk tier to a notification severity.
func SeverityForStatus(status model.Status) Severity {
	switch status {
	case model.StatusDanger:
		return SeverityError
	case model.StatusWarning:
		return SeverityWarning
	default:
		return SeveritySuccess
	}
}

// Notifier delivers a message to the user.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Message is a recorded notification.
type Message struct {
	Text     string
	Severity Severity
}

// ConsoleNotifier writes "[SEVERITY] message" lines.
type ConsoleNotifier struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

// NewConsoleNotifier returns a notifier writing to w.
// In quiet mode only errors are written.
func NewConsoleNotifier(w io.Writer, quiet bool) *ConsoleNotifier {
	return &ConsoleNotifier{w: w, quiet: quiet}
}

// Notify implements Notifier.
func (c *ConsoleNotifier) Notify(message string, severity Severity) {
	if c.quiet && severity != SeverityError {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, "[%s] %s\n", strings.ToUpper(severity.String()), message) //nolint:errcheck // best effort
}

// LogNotifier sends notifications to a slog logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier logging through logger.
// A nil logger means slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(message string, severity Severity) {
	level := slog.LevelInfo
	switch severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	l.logger.Log(context.Background(), level, message, "severity", severity.String())
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Notifier.
func (r *Recorder) Notify(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: message, Severity: severity})
}

// Messages returns a copy of the recorded notifications in order.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(message string, severity Severity) {
	for _, n := range m {
		if n != nil {
			n.Notify(message, severity)
		}
	}
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(string, Severity) {}
