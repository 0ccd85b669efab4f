package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leadlift/leadlift/internal/store"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <user-id>",
	Short: "Export a lead's raw event data",
	Long: `Export a lead's raw event history in CSV or JSON format.

Examples:
  leadlift export user_42 --format csv > events.csv
  leadlift export user_42 --format json > events.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	userID := args[0]

	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format: must be 'csv' or 'json'")
	}

	return withStore(cmd, func(s *store.SQLiteStore) error {
		events, err := s.GetLeadEvents(context.Background(), userID)
		if err != nil {
			return fmt.Errorf("failed to get events: %w", err)
		}

		if len(events) == 0 {
			return fmt.Errorf("no events for lead '%s'", userID)
		}

		if exportFormat == "csv" {
			return exportCSV(events)
		}
		return exportJSON(events)
	})
}

func exportCSV(events []*store.LeadEvent) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "event_type", "score", "event_id"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, e := range events {
		row := []string{
			strconv.FormatInt(e.CreatedAt.Unix(), 10),
			e.Type,
			strconv.Itoa(e.Score),
			e.ID,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

func exportJSON(events []*store.LeadEvent) error {
	type exportEvent struct {
		ID        string            `json:"id"`
		Type      string            `json:"type"`
		Score     int               `json:"score"`
		Metadata  map[string]string `json:"metadata,omitempty"`
		Timestamp int64             `json:"timestamp"`
	}

	out := make([]exportEvent, len(events))
	for i, e := range events {
		out[i] = exportEvent{
			ID:        e.ID,
			Type:      e.Type,
			Score:     e.Score,
			Metadata:  e.Metadata,
			Timestamp: e.CreatedAt.Unix(),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
