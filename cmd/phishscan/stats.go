package main

import (
	"context"
	"fmt"

	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/report"
	"github.com/nao1215/phishscan/internal/store"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize your saved scans",
		Long: `Stats shows how many of your saved scans were safe, suspicious or
malicious, the threats blocked and the average risk score.

It also breaks the last 7 days down by status, shows the threat trend of
the last 6 months and lists the domains flagged most often. With --all the
totals cover every user and a per-user table is added.

The Markdown output includes pie charts of the status distribution and of
the top risky domains.

Examples:
  phishscan stats
  phishscan stats --markdown -o stats.md
  phishscan stats --all --json`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().Bool("all", false, "Aggregate the scans of every user")
	addFormatFlags(cmd)

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	all, err := cmd.Flags().GetBool("all")
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

	// An empty user ID aggregates every user.
	userID := ""
	if !all {
		user, err := requireUser(logger)
		if err != nil {
			return err
		}
		userID = user.ID
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}
	if all {
		if stats.Users, err = userBreakdown(cmd.Context(), db); err != nil {
			return err
		}
	}

	return format.emit(cmd.OutOrStdout(), func(w report.Writer) error {
		_, err := w.WriteStats(stats)
		return err
	})
}

// userBreakdown returns the totals of every user with saved scans.
func userBreakdown(ctx context.Context, db *store.ScanDB) ([]model.UserStats, error) {
	users, err := db.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	breakdown := make([]model.UserStats, 0, len(users))
	for _, id := range users {
		s, err := db.Stats(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to compute stats for %s: %w", id, err)
		}
		breakdown = append(breakdown, model.UserStats{
			UserID:           id,
			TotalScans:       s.TotalScans,
			ThreatsBlocked:   s.ThreatsBlocked(),
			AverageRiskScore: s.AverageRiskScore,
		})
	}
	return breakdown, nil
}
