// Package report renders scan results, scan history and dashboard stats.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown with tables, alerts and a mermaid pie chart
//
// Writers implement the Writer interface, so the CLI can pick one by flag and
// MultiWriter can send the same report to several destinations.
package report
