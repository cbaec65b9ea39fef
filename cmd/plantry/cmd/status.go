package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/plantry/core/internal/db"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and sync queue status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		plants, err := shared.repo.CountPlants(ctx, db.PlantFilter{})
		if err != nil {
			return err
		}
		tasks, err := shared.repo.CountCareTasks(ctx, db.TaskFilter{})
		if err != nil {
			return err
		}
		due, err := shared.repo.CountCareTasks(ctx, db.TaskFilter{DueOnly: true})
		if err != nil {
			return err
		}
		counts, err := shared.repo.GetQueueCounts(ctx)
		if err != nil {
			return err
		}
		cursor, err := shared.repo.SyncCursor(ctx)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		bold.Println("Plantry status")
		fmt.Printf("  Data directory: %s\n", shared.cfg.DataDir)
		fmt.Printf("  Plants:         %d\n", plants)
		fmt.Printf("  Care tasks:     %d", tasks)
		if due > 0 {
			color.New(color.FgYellow).Printf("  (%d due)", due)
		}
		fmt.Println()

		bold.Println("Sync queue")
		fmt.Printf("  Pending: %d\n", counts.Pending)
		if counts.Failed > 0 {
			color.New(color.FgRed).Printf("  Failed:  %d\n", counts.Failed)
		} else {
			fmt.Printf("  Failed:  %d\n", counts.Failed)
		}
		fmt.Printf("  Synced:  %d\n", counts.Synced)

		if cursor.LastPulledAt == 0 {
			fmt.Println("  Last pull: never")
		} else {
			fmt.Printf("  Last pull: %s\n", time.UnixMilli(cursor.LastPulledAt).Format(time.RFC3339))
		}
		return nil
	},
}
