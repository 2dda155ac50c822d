// Package model defines the core data structures used throughout phishscan.
//
// This package contains the following main types:
//   - Status: The safe / warning / danger risk tier shown to users
//   - DomainStatus: The safe / suspicious / malicious tier persisted in history
//   - ScanOutcome: The result of classifying one URL
//   - ScanRecord: A scan outcome stored on behalf of a user
//   - Stats: Aggregated scan history for the dashboard
//
// Models live in their own package so that the classifier, the store and the
// report writers can share them without import cycles. All models are
// serializable to JSON for report output and database storage.
package model
