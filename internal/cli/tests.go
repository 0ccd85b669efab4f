package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leadlift/leadlift/internal/abtest"
	"github.com/leadlift/leadlift/internal/store"
)

var testsCmd = &cobra.Command{
	Use:   "tests [test-id]",
	Short: "Show A/B test results",
	Long: `List the configured A/B tests with their statistics, or show detailed
results for a single test.

Examples:
  leadlift tests
  leadlift tests cta_button_test`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTests,
}

func init() {
	rootCmd.AddCommand(testsCmd)
}

func runTests(cmd *cobra.Command, args []string) error {
	_, registry, err := loadRegistry()
	if err != nil {
		return err
	}

	return withStore(cmd, func(s *store.SQLiteStore) error {
		ctx := context.Background()

		if len(args) == 1 {
			return printTestDetail(ctx, s, registry, args[0])
		}
		return printTestList(cmd, ctx, s, registry)
	})
}

func printTestList(cmd *cobra.Command, ctx context.Context, s *store.SQLiteStore, registry *abtest.Registry) error {
	tests := registry.List()
	if len(tests) == 0 {
		fmt.Println("No tests configured.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tVARIANTS\tIMPRESSIONS\tCONVERSIONS\tGOAL")

	for _, test := range tests {
		stats, err := s.GetVariantStats(ctx, test.ID)
		if err != nil {
			return fmt.Errorf("failed to get stats for test %s: %w", test.ID, err)
		}

		impressions, conversions := 0, 0
		for _, stat := range stats {
			impressions += stat.Impressions
			conversions += stat.Conversions
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			test.ID,
			strings.ToUpper(string(test.Status)),
			len(test.Variants),
			formatNumber(impressions),
			formatNumber(conversions),
			test.ConversionGoal,
		)
	}

	return w.Flush()
}

func printTestDetail(ctx context.Context, s *store.SQLiteStore, registry *abtest.Registry, testID string) error {
	test := registry.Get(testID)
	if test == nil {
		return fmt.Errorf("test '%s' not found", testID)
	}

	stats, err := s.GetVariantStats(ctx, testID)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	report := abtest.BuildReport(test, stats)

	fmt.Printf("TEST: %s\n", test.Name)
	fmt.Printf("STATUS: %s\n", test.Status)
	if test.ConversionGoal != "" {
		fmt.Printf("GOAL: %s\n", test.ConversionGoal)
	}
	fmt.Println()

	fmt.Println("VARIANT           IMPRESSIONS  CONVERSIONS  RATE     95% CI")
	fmt.Println(strings.Repeat("-", 64))

	for _, v := range report.Variants {
		indicator := ""
		if v.VariantID == report.Leading && len(report.Variants) > 1 {
			indicator = " <- LEADING"
		}

		ciStr := fmt.Sprintf("[%.1f%%, %.1f%%]", v.CILower*100, v.CIUpper*100)
		if v.Impressions == 0 {
			ciStr = "N/A"
		}

		name := v.Name
		if len(name) > 16 {
			name = name[:13] + "..."
		}

		fmt.Printf("%-16s  %-11d  %-11d  %-7s  %s%s\n",
			name,
			v.Impressions,
			v.Conversions,
			fmt.Sprintf("%.1f%%", v.Rate*100),
			ciStr,
			indicator,
		)
	}

	fmt.Println()

	sig := report.Significance
	if sig.IsSignificant {
		fmt.Printf("Significant at %.1f%% confidence. Winner: %s\n", sig.Confidence, sig.Winner)
	} else {
		fmt.Printf("Not yet significant (%.1f%% confidence). Keep collecting data.\n", sig.Confidence)
	}

	return nil
}
