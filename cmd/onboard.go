package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/ui/components"
	"github.com/abhisek/learnpath/internal/ui/theme"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Save or replace your learning profile",
	Example: `  learnpath onboard --goal "Learn Go" --weeks 8 --hours 10 \
    --level beginner --style practical --objective "Build a CLI tool"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		goal, _ := f.GetString("goal")
		weeks, _ := f.GetInt("weeks")
		hours, _ := f.GetInt("hours")
		level, _ := f.GetString("level")
		style, _ := f.GetString("style")
		objective, _ := f.GetString("objective")
		prior, _ := f.GetString("prior")

		raw := map[string]any{
			"goal":           goal,
			"timeframeWeeks": weeks,
			"weeklyHours":    hours,
			"skillLevel":     level,
			"learningStyle":  style,
			"endObjective":   objective,
		}
		if prior != "" {
			raw["priorKnowledge"] = prior
		}

		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.profiles.Submit(cmd.Context(), resolveUser(cmd), raw)
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			for _, fe := range ve.Fields {
				fmt.Println(theme.ErrorText.Render("✗ "+fe.Field) + " " + fe.Message)
			}
			return errors.New("profile not saved")
		}
		if err != nil {
			return err
		}

		fmt.Println(components.ProfileCard(p))
		fmt.Println(theme.Hint.Render("Next: learnpath course generate"))
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your learning profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.profiles.Get(cmd.Context(), resolveUser(cmd))
		if errors.Is(err, apperr.ErrNotFound) {
			return errors.New("no profile yet; run `learnpath onboard` first")
		}
		if err != nil {
			return err
		}
		fmt.Println(components.ProfileCard(p))
		return nil
	},
}

func init() {
	f := onboardCmd.Flags()
	f.String("goal", "", "What you want to learn (at least 5 characters)")
	f.Int("weeks", 0, "Timeframe in weeks (1-52)")
	f.Int("hours", 0, "Hours per week (1-168)")
	f.String("level", "beginner", "Skill level: beginner, intermediate or advanced")
	f.String("style", "mixed", "Learning style: visual, text, practical or mixed")
	f.String("objective", "", "What you want to be able to do at the end (at least 10 characters)")
	f.String("prior", "", "What you already know (optional)")
}
