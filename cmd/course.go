package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/ui/components"
	"github.com/abhisek/learnpath/internal/ui/theme"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Generate and browse courses",
}

var courseGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new course from your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		fmt.Println(theme.Hint.Render("Designing your course..."))
		start := time.Now()
		c, err := d.courses.Generate(cmd.Context(), resolveUser(cmd))
		if err != nil {
			return err
		}
		fmt.Println(components.CourseOutline(c))
		fmt.Println(theme.Hint.Render(fmt.Sprintf("Generated in %s.", time.Since(start).Round(time.Millisecond))))
		return nil
	},
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your courses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		courses, err := d.courses.List(cmd.Context(), resolveUser(cmd))
		if err != nil {
			return err
		}
		fmt.Println(components.CourseList(courses))
		return nil
	},
}

var courseShowCmd = &cobra.Command{
	Use:   "show <course-id>",
	Short: "Show a course with modules, videos and progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		c, err := d.courses.Get(cmd.Context(), resolveUser(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Println(components.CourseOutline(c))
		return nil
	},
}

func init() {
	courseCmd.AddCommand(courseGenerateCmd)
	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseShowCmd)
}
