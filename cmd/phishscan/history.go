package main

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/identity"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/report"
	"github.com/nao1215/phishscan/internal/store"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your saved scans",
		Long: `History lists the scans saved for the signed-in user, newest first.

Examples:
  # Show the 20 most recent scans
  phishscan history

  # Show every saved scan as JSON
  phishscan history --limit 0 --json

  # Show a single scan with all details
  phishscan history --id 42

  # Delete your history
  phishscan history --clear`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of scans to show (0 shows all)")
	cmd.Flags().Int64("id", 0,
		"Show a single scan by its history ID")
	cmd.Flags().Bool("clear", false,
		"Delete all saved scans for the signed-in user")
	addFormatFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	clearAll, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}
	format, err := getFormatFlags(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd)
	cfg, err := loadEnvConfig()
	if err != nil {
		return err
	}
	user, err := requireUser(logger)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if clearAll {
		return clearHistory(cmd, db, user, logger)
	}

	records, err := loadHistory(cmd, db, user, id, limit)
	if err != nil {
		return err
	}

	history := &report.History{UserID: user.ID, Records: records}
	return format.emit(cmd.OutOrStdout(), func(w report.Writer) error {
		_, err := w.WriteHistory(history)
		return err
	})
}

// loadHistory returns the record with the given ID, or the newest limit records when id is zero.
func loadHistory(cmd *cobra.Command, db *store.ScanDB, user identity.Identity, id int64, limit int) ([]*model.ScanRecord, error) {
	if id == 0 {
		records, err := db.History(cmd.Context(), user.ID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
		return records, nil
	}

	record, err := db.GetByID(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load scan %d: %w", id, err)
	}
	// Records of other users are reported as missing.
	if record == nil || record.UserID != user.ID {
		return nil, fmt.Errorf("scan %d not found", id)
	}
	return []*model.ScanRecord{record}, nil
}

// clearHistory deletes every saved scan of user.
func clearHistory(cmd *cobra.Command, db *store.ScanDB, user identity.Identity, logger *slog.Logger) error {
	n, err := db.DeleteHistory(cmd.Context(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	logger.Debug("history cleared", "user", user.ID, "deleted", n)
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d saved scans for %s\n", n, user.ID)
	return nil
}
