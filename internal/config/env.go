package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables recognized by phishscan.
const (
	// EnvUser overrides the signed-in user identity.
	EnvUser = "PHISHSCAN_USER"

	// EnvDBDir overrides the history database directory.
	EnvDBDir = "PHISHSCAN_DB_DIR"

	// EnvRules points at a rules file.
	EnvRules = "PHISHSCAN_RULES"
)

// LoadEnv loads variables from the given .env files (".env" when none are
// given). Variables already present in the process environment win.
// Missing files are not an error.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnv copies environment overrides into the config.
func (c *Config) ApplyEnv() {
	if dir := os.Getenv(EnvDBDir); dir != "" {
		c.DBDir = dir
	}
}
