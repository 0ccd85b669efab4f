package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "leadlift",
	Short: "Leadlift - a self-hosted marketing analytics backend",
	Long: `Leadlift is a self-hosted backend for marketing content sites:
blog search, lead scoring, A/B testing of CTAs and an admin dashboard.
Single Go binary, embedded SQLite, no external services.

Running without a subcommand starts the server (same as 'leadlift serve').`,
	RunE: runServe, // Default action is to start the server
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", getEnvOrDefault("LL_DB_PATH", "./leadlift.db"), "database path")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", getEnvOrDefault("LL_CONFIG", "./leadlift.yml"), "config file path")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
