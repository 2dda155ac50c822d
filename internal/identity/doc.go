// Package identity answers "who is the current user?".
//
// Scan history is only saved for a signed-in user. The user ID is kept in the
// OS keychain (falling back to a file when no keychain is available), and can
// be overridden with the PHISHSCAN_USER environment variable.
package identity
