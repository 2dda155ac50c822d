package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/phishscan.yaml
var rulesTemplate embed.FS

const rulesTemplatePath = "templates/phishscan.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a rules file with the default rules",
		Long: `Init writes a .phishscan.yaml rules file to the current directory.

The file lists the built-in denylist, suspicious TLDs, weights and
thresholds with comments, ready to be edited.

Examples:
  # Create .phishscan.yaml in current directory
  phishscan init

  # Create the rules file at a specific path
  phishscan init -o ~/.config/phishscan/rules.yaml

  # Overwrite an existing file
  phishscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultRulesFile,
		"Output file path for the rules file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing rules file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("rules file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := rulesTemplate.ReadFile(rulesTemplatePath)
	if err != nil {
		return fmt.Errorf("failed to read rules template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created rules file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to change:")
	fmt.Fprintln(out, "  - Denylisted substrings and suspicious TLDs")
	fmt.Fprintln(out, "  - Rule weights and status thresholds")

	return nil
}
