package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultRulesFile is the default rules file name.
const DefaultRulesFile = ".phishscan.yaml"

// ErrConfigNotFound is returned when the rules file does not exist.
var ErrConfigNotFound = errors.New("rules file not found")

// LoadRulesFile loads classifier rules from a YAML file.
// Keys missing from the file fall back to DefaultRules.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadRulesFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided rules path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	return ParseRules(data)
}

// ParseRules parses YAML rules and merges them with the defaults.
func ParseRules(data []byte) (*Rules, error) {
	var raw Rules
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	// Blank entries are rejected before normalization drops them silently.
	if err := raw.checkPatterns(); err != nil {
		return nil, err
	}

	rules := raw.WithDefaults()
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

// FindRulesFile searches for the rules file in the following order:
// 1. If rulesPath is specified, use it directly
// 2. $PHISHSCAN_RULES
// 3. .phishscan.yaml in the current directory
// 4. .phishscan.yaml in the user's home directory
// 5. rules.yaml in the XDG config directory
//
// Returns the path to the rules file if found, or empty string if not found.
func FindRulesFile(rulesPath string) string {
	if rulesPath != "" {
		if _, err := os.Stat(rulesPath); err == nil {
			return rulesPath
		}
		return ""
	}

	if envPath := os.Getenv(EnvRules); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdRules := filepath.Join(cwd, DefaultRulesFile)
		if _, err := os.Stat(cwdRules); err == nil {
			return cwdRules
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeRules := filepath.Join(home, DefaultRulesFile)
		if _, err := os.Stat(homeRules); err == nil {
			return homeRules
		}
	}

	xdgRules := filepath.Join(XDGConfigDir(), "rules.yaml")
	if _, err := os.Stat(xdgRules); err == nil {
		return xdgRules
	}

	return ""
}
