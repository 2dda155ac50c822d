package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/phishscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the details panel to each result.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the scan results in human-readable format.
func (w *SimpleWriter) Write(report *ScanReport) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "PHISHSCAN REPORT")

	for i, res := range report.Results {
		if i > 0 {
			sb.WriteString("\n")
		}
		w.writeResult(&sb, res)
	}

	if len(report.Results) > 1 {
		sb.WriteString("\n")
		writeSection(&sb, "SUMMARY")
		s := report.Summary
		sb.WriteString(fmt.Sprintf("  Safe:     %d\n", s.Safe))
		sb.WriteString(fmt.Sprintf("  Warning:  %d\n", s.Warning))
		sb.WriteString(fmt.Sprintf("  Danger:   %d\n", s.Danger))
		if s.Invalid > 0 {
			sb.WriteString(fmt.Sprintf("  Invalid:  %d\n", s.Invalid))
		}
		if s.Interrupted > 0 {
			sb.WriteString(fmt.Sprintf("  Interrupted: %d\n", s.Interrupted))
		}
		sb.WriteString(fmt.Sprintf("  TOTAL:    %d URLs\n", s.Total))
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeResult writes a single result block.
func (w *SimpleWriter) writeResult(sb *strings.Builder, res Result) {
	sb.WriteString(fmt.Sprintf("URL:        %s\n", res.URL))

	if res.Outcome == nil {
		if res.Interrupted {
			sb.WriteString(fmt.Sprintf("Status:     INTERRUPTED - %s\n", res.Error))
			return
		}
		sb.WriteString(fmt.Sprintf("Status:     INVALID - %s\n", res.Error))
		return
	}

	o := res.Outcome
	sb.WriteString(fmt.Sprintf("Status:     [%s] %s\n", statusIndicator(o.Status), strings.ToUpper(o.Status.String())))
	sb.WriteString(fmt.Sprintf("Risk Score: %d%%\n", o.RiskScore))
	sb.WriteString(fmt.Sprintf("Scan Time:  %s\n", o.ScannedAt.Format(dateLayout)))
	if res.PreviousScans > 0 {
		sb.WriteString(fmt.Sprintf("History:    previously scanned %d time(s)\n", res.PreviousScans))
	}
	if res.Interrupted {
		sb.WriteString("Note:       interrupted before the scan finished\n")
	}
	sb.WriteString("Reasons:\n")
	for _, reason := range o.Reasons {
		sb.WriteString(fmt.Sprintf("  * %s\n", reason))
	}

	if w.verbose {
		d := o.Details
		sb.WriteString("Details:\n")
		writeDetail(sb, "Domain", d.RegistrableDomain)
		if d.ASCIIHost != d.Host {
			writeDetail(sb, "ASCII Host", d.ASCIIHost)
		}
		writeDetail(sb, "Domain Age", d.DomainAge)
		writeDetail(sb, "SSL Status", d.SSLStatus)
		writeDetail(sb, "Reputation", d.Reputation)
		writeDetail(sb, "Content", d.ContentAnalysis)
	}
}

// WriteHistory outputs saved scans, one line each.
func (w *SimpleWriter) WriteHistory(history *History) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "SCAN HISTORY")
	sb.WriteString(fmt.Sprintf("User: %s\n\n", history.UserID))

	if len(history.Records) == 0 {
		sb.WriteString("  No scans saved yet\n")
	}
	for _, r := range history.Records {
		sb.WriteString(fmt.Sprintf("  #%-5d %s  %-10s %3d%%  %s\n",
			r.ID,
			r.CreatedAt.Format(dateLayout),
			statusLabel(r.Status),
			r.RiskScore,
			r.URL,
		))
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteStats outputs the dashboard summary.
func (w *SimpleWriter) WriteStats(stats *model.Stats) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "DASHBOARD")
	if stats.UserID != "" {
		sb.WriteString(fmt.Sprintf("User: %s\n\n", stats.UserID))
	}

	sb.WriteString(fmt.Sprintf("  Total Scans:      %d\n", stats.TotalScans))
	sb.WriteString(fmt.Sprintf("  Threats Blocked:  %d\n", stats.ThreatsBlocked()))
	sb.WriteString(fmt.Sprintf("  %-16s  %d\n", statusLabel(model.DomainStatusSafe)+":", stats.SafeCount))
	sb.WriteString(fmt.Sprintf("  %-16s  %d\n", statusLabel(model.DomainStatusSuspicious)+":", stats.SuspiciousCount))
	sb.WriteString(fmt.Sprintf("  %-16s  %d\n", statusLabel(model.DomainStatusMalicious)+":", stats.MaliciousCount))
	sb.WriteString(fmt.Sprintf("  Average Risk:     %.1f%%\n", stats.AverageRiskScore))
	if !stats.LastScanAt.IsZero() {
		sb.WriteString(fmt.Sprintf("  Last Scan:        %s\n", stats.LastScanAt.Format(dateLayout)))
	}

	if stats.HasScans() {
		writeAnalytics(&sb, stats)
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeAnalytics writes the weekly, monthly, domain and user sections.
func writeAnalytics(sb *strings.Builder, stats *model.Stats) {
	if len(stats.Daily) > 0 {
		sb.WriteString("\n")
		writeSection(sb, "WEEKLY DETECTIONS")
		sb.WriteString(fmt.Sprintf("  %-12s %6s %11s %10s\n", "Date", "Safe", "Suspicious", "Malicious"))
		for _, d := range stats.Daily {
			sb.WriteString(fmt.Sprintf("  %-12s %6d %11d %10d\n", d.Date, d.Safe, d.Suspicious, d.Malicious))
		}
	}

	if len(stats.Monthly) > 0 {
		sb.WriteString("\n")
		writeSection(sb, "MONTHLY TREND")
		sb.WriteString(fmt.Sprintf("  %-8s %8s %8s\n", "Month", "Threats", "Blocked"))
		for _, m := range stats.Monthly {
			sb.WriteString(fmt.Sprintf("  %-8s %8d %8d\n", m.Month, m.Threats, m.Blocked))
		}
	}

	if len(stats.TopDomains) > 0 {
		sb.WriteString("\n")
		writeSection(sb, "TOP RISKY DOMAINS")
		for _, d := range stats.TopDomains {
			sb.WriteString(fmt.Sprintf("  %-40s %4d  %s\n", d.Domain, d.Attempts, d.Risk))
		}
	}

	if len(stats.Users) > 0 {
		sb.WriteString("\n")
		writeSection(sb, "USERS")
		for _, u := range stats.Users {
			sb.WriteString(fmt.Sprintf("  %-24s %5d scans  %5d threats  %5.1f%% avg\n",
				u.UserID, u.TotalScans, u.ThreatsBlocked, u.AverageRiskScore))
		}
	}
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%*s\n", 35+len(title)/2, title))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
}

func writeDetail(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("  %-11s %s\n", label+":", value))
}

// statusIndicator returns a visual indicator for the status tier.
func statusIndicator(status model.Status) string {
	switch status {
	case model.StatusDanger:
		return "!!"
	case model.StatusWarning:
		return "!"
	case model.StatusSafe:
		return "+"
	default:
		return "?"
	}
}

// statusLabel returns a display label such as "Suspicious".
// A Caser is stateful, so one is created per call.
func statusLabel(status model.DomainStatus) string {
	return cases.Title(language.English).String(status.String())
}
