package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/phishscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(report *ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Phishscan Report")
	md.PlainText("")
	md.PlainTextf("Generated: %s", report.GeneratedAt.Format(dateLayout))
	md.PlainText("")

	if len(report.Results) > 1 {
		w.writeSummary(md, report)
	}

	for _, res := range report.Results {
		w.writeResult(md, res)
	}

	writeFooter(md)

	return len(md.String()), md.Build()
}

// writeSummary writes the status table, chart and alert for a batch.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *ScanReport) {
	s := report.Summary

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows: [][]string{
			{"🟢 Safe", strconv.Itoa(s.Safe)},
			{"🟡 Warning", strconv.Itoa(s.Warning)},
			{"🔴 Danger", strconv.Itoa(s.Danger)},
			{"⚪ Invalid", strconv.Itoa(s.Invalid)},
			{"⏸ Interrupted", strconv.Itoa(s.Interrupted)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	writePieChart(md, "Scan Result Distribution", []slice{
		{"Safe", s.Safe},
		{"Warning", s.Warning},
		{"Danger", s.Danger},
		{"Invalid", s.Invalid},
	})

	switch {
	case s.Danger > 0:
		md.Cautionf("%d URL(s) show strong phishing indicators. Do not open them.", s.Danger)
	case s.Warning > 0:
		md.Warningf("%d URL(s) show some phishing indicators. Proceed with caution.", s.Warning)
	default:
		md.Tip("No phishing indicators found.")
	}
	md.PlainText("")
}

// writeResult writes one URL section.
func (w *MarkdownWriter) writeResult(md *markdown.Markdown, res Result) {
	md.H2("`" + res.URL + "`")
	md.PlainText("")

	if res.Outcome == nil {
		if res.Interrupted {
			md.Warningf("Scan interrupted before classification: %s", res.Error)
		} else {
			md.Importantf("Not a valid URL: %s", res.Error)
		}
		md.PlainText("")
		return
	}

	o := res.Outcome
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Status", statusBadge(o.Status)},
			{"Risk Score", strconv.Itoa(o.RiskScore) + "%"},
			{"Scan Time", o.ScannedAt.Format(dateLayout)},
			{"Previous Scans", strconv.Itoa(res.PreviousScans)},
			{"Domain", orDash(o.Details.RegistrableDomain)},
			{"Domain Age", orDash(o.Details.DomainAge)},
			{"SSL Status", orDash(o.Details.SSLStatus)},
			{"Reputation", orDash(o.Details.Reputation)},
			{"Content Analysis", orDash(o.Details.ContentAnalysis)},
		},
	})
	md.PlainText("")

	if res.Interrupted {
		md.Warning("Interrupted before the scan finished. Enrichment or saving may be missing.")
		md.PlainText("")
	}

	md.H3("Reasons")
	md.PlainText("")
	md.BulletList(o.Reasons...)
	md.PlainText("")

	switch o.Status {
	case model.StatusDanger:
		md.Cautionf("High risk (%d%%). This URL is likely a phishing attempt.", o.RiskScore)
	case model.StatusWarning:
		md.Warningf("Medium risk (%d%%). Verify the sender before opening this URL.", o.RiskScore)
	default:
		md.Note("No strong phishing indicators found.")
	}
	md.PlainText("")
}

// WriteHistory implements Writer.
func (w *MarkdownWriter) WriteHistory(history *History) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Scan History")
	md.PlainText("")
	md.PlainTextf("User: `%s`", history.UserID)
	md.PlainText("")

	if len(history.Records) == 0 {
		md.PlainText("No scans saved yet.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(history.Records))
		for i, r := range history.Records {
			rows[i] = []string{
				strconv.FormatInt(r.ID, 10),
				r.CreatedAt.Format(dateLayout),
				statusBadge(r.Status.Status()),
				strconv.Itoa(r.RiskScore) + "%",
				"`" + truncateString(r.URL, 60) + "`",
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"ID", "Date", "Status", "Risk", "URL"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteStats implements Writer.
func (w *MarkdownWriter) WriteStats(stats *model.Stats) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Dashboard")
	md.PlainText("")
	if stats.UserID != "" {
		md.PlainTextf("User: `%s`", stats.UserID)
		md.PlainText("")
	}

	lastScan := "-"
	if !stats.LastScanAt.IsZero() {
		lastScan = stats.LastScanAt.Format(dateLayout)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Scans", strconv.Itoa(stats.TotalScans)},
			{"Threats Blocked", strconv.Itoa(stats.ThreatsBlocked())},
			{"🟢 " + statusLabel(model.DomainStatusSafe), strconv.Itoa(stats.SafeCount)},
			{"🟡 " + statusLabel(model.DomainStatusSuspicious), strconv.Itoa(stats.SuspiciousCount)},
			{"🔴 " + statusLabel(model.DomainStatusMalicious), strconv.Itoa(stats.MaliciousCount)},
			{"Average Risk", fmt.Sprintf("%.1f%%", stats.AverageRiskScore)},
			{"Detection Rate", fmt.Sprintf("%.1f%%", stats.DetectionRate())},
			{"Last Scan", lastScan},
		},
	})
	md.PlainText("")

	if stats.HasScans() {
		writePieChart(md, "Scans by Status", []slice{
			{statusLabel(model.DomainStatusSafe), stats.SafeCount},
			{statusLabel(model.DomainStatusSuspicious), stats.SuspiciousCount},
			{statusLabel(model.DomainStatusMalicious), stats.MaliciousCount},
		})
		w.writeAnalytics(md, stats)
	} else {
		md.Note("No scans saved yet. Sign in with `phishscan login` to keep a history.")
		md.PlainText("")
	}

	writeFooter(md)

	return len(md.String()), md.Build()
}

// writeAnalytics writes the weekly, monthly, domain and user sections.
func (w *MarkdownWriter) writeAnalytics(md *markdown.Markdown, stats *model.Stats) {
	if len(stats.Daily) > 0 {
		rows := make([][]string, len(stats.Daily))
		for i, d := range stats.Daily {
			rows[i] = []string{
				d.Date,
				strconv.Itoa(d.Safe),
				strconv.Itoa(d.Suspicious),
				strconv.Itoa(d.Malicious),
			}
		}
		md.H2("Weekly Detections")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Date", "🟢 Safe", "🟡 Suspicious", "🔴 Malicious"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(stats.Monthly) > 0 {
		rows := make([][]string, len(stats.Monthly))
		for i, m := range stats.Monthly {
			rows[i] = []string{m.Month, strconv.Itoa(m.Threats), strconv.Itoa(m.Blocked)}
		}
		md.H2("Monthly Trend")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Month", "Threats", "Blocked"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(stats.TopDomains) > 0 {
		rows := make([][]string, len(stats.TopDomains))
		segments := make([]slice, len(stats.TopDomains))
		for i, d := range stats.TopDomains {
			rows[i] = []string{"`" + d.Domain + "`", strconv.Itoa(d.Attempts), riskBadge(d.Risk)}
			segments[i] = slice{d.Domain, d.Attempts}
		}
		md.H2("Top Risky Domains")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Domain", "Attempts", "Risk"},
			Rows:   rows,
		})
		md.PlainText("")
		writePieChart(md, "Threat Attempts by Domain", segments)
	}

	if len(stats.Users) > 0 {
		rows := make([][]string, len(stats.Users))
		for i, u := range stats.Users {
			rows[i] = []string{
				"`" + u.UserID + "`",
				strconv.Itoa(u.TotalScans),
				strconv.Itoa(u.ThreatsBlocked),
				fmt.Sprintf("%.1f%%", u.AverageRiskScore),
			}
		}
		md.H2("Users")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"User", "Scans", "Threats Blocked", "Average Risk"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// riskBadge returns the domain risk level with a colored marker.
func riskBadge(risk string) string {
	if risk == model.RiskHigh {
		return "🔴 " + risk
	}
	return "🟡 " + risk
}

// slice is one pie chart segment.
type slice struct {
	label string
	count int
}

// writePieChart writes a mermaid pie chart of the non-empty slices.
func writePieChart(md *markdown.Markdown, title string, slices []slice) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(title),
		piechart.WithShowData(true),
	)

	added := 0
	for _, s := range slices {
		if s.count > 0 {
			chart.LabelAndIntValue(s.label, uint64(s.count))
			added++
		}
	}
	if added == 0 {
		return
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [phishscan](https://github.com/nao1215/phishscan)*")
}

// statusBadge returns the status with a colored marker.
func statusBadge(status model.Status) string {
	switch status {
	case model.StatusDanger:
		return "🔴 Danger"
	case model.StatusWarning:
		return "🟡 Warning"
	case model.StatusSafe:
		return "🟢 Safe"
	default:
		return "⚪ " + strings.ToUpper(status.String())
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
