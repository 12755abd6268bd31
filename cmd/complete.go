package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/ui/theme"
)

var completeCmd = &cobra.Command{
	Use:   "complete <module-id>",
	Short: "Mark the active module of a course as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.progress.Complete(cmd.Context(), resolveUser(cmd), args[0])
		if err != nil {
			return err
		}

		fmt.Println(theme.Completed.Render("✓ Module completed!") + "  " +
			theme.XP.Render(fmt.Sprintf("+%d XP", res.Progress.XPEarned)))
		fmt.Printf("Total XP %d · Level %d · Streak %d day(s)\n",
			res.Stats.TotalXP, res.Stats.Level, res.Stats.StreakDays)
		if res.LeveledUp {
			fmt.Println(theme.Title.Render(fmt.Sprintf("Level up! You reached level %d.", res.Stats.Level)))
		}
		if res.SameDayStreak {
			fmt.Println(theme.Hint.Render("Already active today; streak counts calendar days."))
		}
		if res.Unlocked != nil {
			fmt.Println("Unlocked: " + theme.Active.Render(res.Unlocked.Title) + theme.Hint.Render("  "+res.Unlocked.ID))
		}
		if res.CourseCompleted {
			fmt.Println(theme.Title.Render("Course complete. Well done!"))
		}
		return nil
	},
}
