// Package store provides SQLite-based storage for scan history.
//
// The ScanDB keeps one row per saved scan: the user, the URL and its
// fingerprint, the risk score, the coarse domain status, the reasons and the
// details panel as JSON. It backs the history and stats commands.
//
// The database is a single file opened through modernc.org/sqlite, which is
// CGO-free, with WAL journaling and a single connection.
package store
