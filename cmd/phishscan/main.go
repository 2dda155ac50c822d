// Package main provides the entry point for the phishscan CLI.
//
// phishscan rates URLs for phishing risk with a small set of explainable
// heuristics and keeps a per-user history of the results.
//
// Usage:
//
//	phishscan scan <url>
//	phishscan scan --list <file>
//	phishscan history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
