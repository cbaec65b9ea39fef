package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/plantry/core/internal/db"
	apperrors "github.com/plantry/core/internal/errors"
	"github.com/plantry/core/internal/models"
	"github.com/plantry/core/internal/schedule"
)

var (
	taskDueOnly     bool
	taskOverdueOnly bool
	taskPlantID     string
	taskTypeFlag    string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage care tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List care tasks, soonest due first",
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := shared.repo.ListCareTasks(cmd.Context(), db.TaskFilter{
			PlantID:     models.UUID(taskPlantID),
			TaskType:    models.TaskType(taskTypeFlag),
			DueOnly:     taskDueOnly,
			OverdueOnly: taskOverdueOnly,
		})
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		now := time.Now()
		for _, t := range tasks {
			printTask(t, now)
		}
		return nil
	},
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a task done, advancing recurring tasks to their next due date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := shared.repo.CompleteTask(cmd.Context(), models.UUID(args[0]))
		if err != nil {
			return err
		}
		if task == nil {
			fmt.Println("Task not found.")
			return nil
		}
		if task.Recurring() && task.DueAt != nil {
			color.Green("Completed %q, next due %s", task.Title,
				task.DueAtTime().Format("2006-01-02"))
			return nil
		}
		color.Green("Completed %q", task.Title)
		return nil
	},
}

var tasksSnoozeCmd = &cobra.Command{
	Use:   "snooze <id> <until>",
	Short: "Suppress a task's due status until a date",
	Long: `Snooze a task until the given time. The time may be a natural-language
phrase such as "tomorrow", "next friday" or "in 3 days", or a date in
YYYY-MM-DD form.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		until, err := parseWhen(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		task, err := shared.repo.SnoozeTask(cmd.Context(), models.UUID(args[0]), until)
		if err != nil {
			return err
		}
		if task == nil {
			fmt.Println("Task not found.")
			return nil
		}
		color.Green("Snoozed %q until %s", task.Title, until.Format("2006-01-02 15:04"))
		return nil
	},
}

func printTask(t *models.CareTask, now time.Time) {
	label := fmt.Sprintf("%-10s %s", t.TaskType, t.Title)
	switch {
	case schedule.IsOverdue(t, now):
		color.New(color.FgRed).Printf("  ! %s  (overdue since %s)\n", label,
			t.DueAtTime().Format("2006-01-02"))
	case schedule.IsDue(t, now):
		color.New(color.FgYellow).Printf("  * %s  (due today)\n", label)
	case t.CompletedAt != nil:
		color.New(color.Faint).Printf("    %s  (done)\n", label)
	case t.DueAt != nil:
		fmt.Printf("    %s  (due %s)\n", label, t.DueAtTime().Format("2006-01-02"))
	default:
		fmt.Printf("    %s\n", label)
	}
}

// parseWhen accepts natural-language phrases and plain dates.
func parseWhen(text string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", text, time.Local); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(text, time.Now())
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.ErrInvalid, "failed to parse time", err)
	}
	if result == nil {
		return time.Time{}, apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("could not understand time %q", text))
	}
	return result.Time, nil
}

func init() {
	tasksListCmd.Flags().BoolVar(&taskDueOnly, "due", false, "only tasks due now")
	tasksListCmd.Flags().BoolVar(&taskOverdueOnly, "overdue", false, "only overdue tasks")
	tasksListCmd.Flags().StringVar(&taskPlantID, "plant", "", "filter by plant ID")
	tasksListCmd.Flags().StringVar(&taskTypeFlag, "type", "", "filter by task type")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksCompleteCmd)
	tasksCmd.AddCommand(tasksSnoozeCmd)
}
