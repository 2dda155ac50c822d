// Package config provides configuration structures and utilities for phishscan.
// It defines the command line options for scanning URLs, the YAML rules file
// that holds the classifier's denylist, suspicious TLD set and weights, and
// the XDG locations used for the scan history database.
package config
