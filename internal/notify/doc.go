// Package notify delivers short user-facing messages such as
// "Scan complete: danger (82%)".
//
// A Notifier is fire-and-forget: it never returns an error and never blocks
// the scan that produced the message.
package notify
