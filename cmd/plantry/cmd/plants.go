package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/plantry/core/internal/db"
	"github.com/plantry/core/internal/models"
)

var (
	plantSpecies  string
	plantLocation string
	plantTags     []string
	plantNotes    string
	plantDeleted  bool
)

var plantsCmd = &cobra.Command{
	Use:   "plants",
	Short: "Manage tracked plants",
}

var plantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plants",
	RunE: func(cmd *cobra.Command, args []string) error {
		plants, err := shared.repo.ListPlants(cmd.Context(), db.PlantFilter{
			IncludeDeleted: plantDeleted,
			Species:        plantSpecies,
			Location:       plantLocation,
			Tags:           plantTags,
		})
		if err != nil {
			return err
		}
		if len(plants) == 0 {
			fmt.Println("No plants found.")
			return nil
		}

		for _, p := range plants {
			line := p.Name
			if p.Species != "" {
				line += " (" + p.Species + ")"
			}
			if p.DeletedAt != nil {
				color.New(color.Faint).Printf("  %s [deleted]\n", line)
				continue
			}
			fmt.Printf("  %s", line)
			if p.Location != "" {
				fmt.Printf("  @ %s", p.Location)
			}
			if len(p.Tags) > 0 {
				color.New(color.FgCyan).Printf("  #%s", strings.Join(p.Tags, " #"))
			}
			fmt.Println()
		}
		return nil
	},
}

var plantsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a plant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plant, err := shared.repo.CreatePlant(cmd.Context(), db.NewPlant{
			Name:     args[0],
			Species:  plantSpecies,
			Location: plantLocation,
			Notes:    plantNotes,
			Tags:     plantTags,
		})
		if err != nil {
			return err
		}
		color.Green("Added plant %s (%s)", plant.Name, plant.ID)
		return nil
	},
}

var plantsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Soft delete a plant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := shared.repo.DeletePlant(cmd.Context(), models.UUID(args[0]))
		if err != nil {
			return err
		}
		if !removed {
			fmt.Println("Plant not found.")
			return nil
		}
		color.Green("Plant removed (recoverable with 'plants restore').")
		return nil
	},
}

var plantsRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a soft-deleted plant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plant, err := shared.repo.RestorePlant(cmd.Context(), models.UUID(args[0]))
		if err != nil {
			return err
		}
		if plant == nil {
			fmt.Println("Plant not found or not deleted.")
			return nil
		}
		color.Green("Restored plant %s", plant.Name)
		return nil
	},
}

func init() {
	plantsCmd.PersistentFlags().StringVar(&plantSpecies, "species", "", "filter or set species")
	plantsCmd.PersistentFlags().StringVar(&plantLocation, "location", "", "filter or set location")
	plantsCmd.PersistentFlags().StringSliceVar(&plantTags, "tag", nil, "filter or set tags (repeatable)")
	plantsAddCmd.Flags().StringVar(&plantNotes, "notes", "", "free-form notes")
	plantsListCmd.Flags().BoolVar(&plantDeleted, "deleted", false, "include soft-deleted plants")

	plantsCmd.AddCommand(plantsListCmd)
	plantsCmd.AddCommand(plantsAddCmd)
	plantsCmd.AddCommand(plantsRemoveCmd)
	plantsCmd.AddCommand(plantsRestoreCmd)
}
