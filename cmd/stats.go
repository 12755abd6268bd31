package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/progress"
	"github.com/abhisek/learnpath/internal/ui/components"
	"github.com/abhisek/learnpath/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show XP, level and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := d.progress.Stats(cmd.Context(), resolveUser(cmd))
		if errors.Is(err, apperr.ErrNotFound) {
			fmt.Println(theme.Hint.Render("No stats yet; run `learnpath onboard` to get started."))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(components.StatsCard(s, progress.XPPerLevel))
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show completed modules and stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		sum, err := d.progress.Summary(cmd.Context(), resolveUser(cmd))
		if err != nil {
			return err
		}
		if sum.Stats != nil {
			fmt.Println(components.StatsCard(sum.Stats, progress.XPPerLevel))
		}
		fmt.Println(components.History(sum.Completed))
		return nil
	},
}
