package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leadlift/leadlift/internal/scoring"
	"github.com/leadlift/leadlift/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List scored leads",
	Long:  `List all scored leads with their stage, score and conversion probability.`,
	RunE:  runLeads,
}

func init() {
	rootCmd.AddCommand(leadsCmd)
}

func runLeads(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(s *store.SQLiteStore) error {
		ctx := context.Background()
		engine := scoring.NewEngine(s)

		userIDs, err := s.ListLeadUserIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list leads: %w", err)
		}

		if len(userIDs) == 0 {
			fmt.Println("No leads yet.")
			fmt.Println()
			fmt.Println("Leads appear once your site posts events to /api/track.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USER\tSTAGE\tSCORE\tPROBABILITY\tEVENTS\tLAST SEEN")

		for _, userID := range userIDs {
			lead, err := engine.GetLead(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load lead %s: %w", userID, err)
			}

			lastSeen := ""
			if n := len(lead.Events); n > 0 {
				lastSeen = lead.Events[n-1].Timestamp.Format("2006-01-02")
			}

			fmt.Fprintf(w, "%s\t%s\t%.0f\t%.0f%%\t%d\t%s\n",
				lead.UserID,
				lead.Stage,
				lead.TotalScore,
				lead.ConversionProbability,
				len(lead.Events),
				lastSeen,
			)
		}
		w.Flush()

		analytics, err := engine.Analytics(ctx)
		if err != nil {
			return fmt.Errorf("failed to compute analytics: %w", err)
		}

		fmt.Println()
		fmt.Printf("TOTAL: %s leads, avg score %.0f\n", formatNumber(analytics.TotalLeads), analytics.AvgScore)
		fmt.Printf("FUNNEL:")
		for _, stage := range scoring.Stages {
			fmt.Printf("  %s %d", stage, analytics.ByStage[stage])
		}
		fmt.Println()

		return nil
	})
}
