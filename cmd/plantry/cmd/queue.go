package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pruneDays int

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and maintain the sync change queue",
}

var queuePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List changes waiting to sync, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := shared.repo.GetPendingChanges(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Queue is empty.")
			return nil
		}

		for _, e := range entries {
			created := time.UnixMilli(e.CreatedAt).Format("2006-01-02 15:04:05")
			fmt.Printf("  %s  %-12s %-6s %s", created, e.EntityType, e.Operation, e.EntityID)
			if e.RetryCount > 0 {
				color.New(color.FgRed).Printf("  (%d failed attempts: %s)", e.RetryCount, e.LastError)
			}
			fmt.Println()
		}
		return nil
	},
}

var queueStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show queue partition counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := shared.repo.GetQueueCounts(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Pending: %d\nFailed:  %d\nSynced:  %d\n",
			counts.Pending, counts.Failed, counts.Synced)
		return nil
	},
}

var queuePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old synced entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		days := pruneDays
		if days <= 0 {
			days = shared.cfg.QueueRetentionDays
		}
		removed, err := shared.repo.ClearOldSynced(cmd.Context(), days)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d synced entries older than %d days.\n", removed, days)
		return nil
	},
}

var queueConflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List resolved sync conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		logs, err := shared.repo.ListConflicts(cmd.Context())
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			fmt.Println("No conflicts recorded.")
			return nil
		}

		for _, c := range logs {
			detected := c.DetectedAtTime().Format("2006-01-02 15:04:05")
			fmt.Printf("  %s  %-12s %s", detected, c.EntityType, c.EntityID)
			if c.Resolution == "local_wins" {
				color.New(color.FgGreen).Printf("  local won")
			} else {
				color.New(color.FgYellow).Printf("  remote won")
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	queuePruneCmd.Flags().IntVar(&pruneDays, "days", 0, "retention window in days (default from config)")

	queueCmd.AddCommand(queuePendingCmd)
	queueCmd.AddCommand(queueStatsCmd)
	queueCmd.AddCommand(queuePruneCmd)
	queueCmd.AddCommand(queueConflictsCmd)
}
