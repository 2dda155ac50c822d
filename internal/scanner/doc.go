// Package scanner runs URL scans end to end.
//
// A scan is a pipeline of steps that share a ScanJob: classify, enrich,
// persist and notify. Each step is small and can be tested on its own; the
// Service wires them together, and the BatchProcessor runs many scans
// concurrently with errgroup.
//
// Only classification can fail a scan. Enrichment and persistence problems
// are logged and reported to the user, and the outcome is still returned.
package scanner
