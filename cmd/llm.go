package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/llm"
	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/ui/components"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect curriculum generation calls and token spend",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent curriculum model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd, func(events store.EventRepo) error {
			records, err := events.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			fmt.Println(components.EventTable(records))
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid event ID %q", args[0])
		}

		return withEvents(cmd, func(events store.EventRepo) error {
			record, err := events.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if record == nil {
				return apperr.NotFound("llm event", args[0])
			}
			fmt.Println(components.EventDetail(record))
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(events store.EventRepo) error {
			byPurpose, err := events.LLMUsageByPurpose(cmd.Context())
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			fmt.Println(components.UsageTable(byPurpose))
			if len(byPurpose) == 0 {
				return nil
			}

			byModel, err := events.LLMUsageByModel(cmd.Context())
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if table := components.CostTable(byModel, priceUsage); table != "" {
				fmt.Println()
				fmt.Println(table)
			}
			return nil
		})
	},
}

// priceUsage prices a usage row from the built-in model table.
func priceUsage(u store.LLMUsage) (float64, bool) {
	cost := llm.LookupCost(u.Model)
	if cost == nil {
		return 0, false
	}
	return cost.Cost(int64(u.InputTokens), int64(u.OutputTokens)), true
}

// withEvents opens the database just long enough to read the event log.
func withEvents(cmd *cobra.Command, fn func(store.EventRepo) error) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	return fn(s.EventRepo())
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls with this purpose (e.g. curriculum)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
