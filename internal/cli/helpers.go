package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadlift/leadlift/internal/abtest"
	"github.com/leadlift/leadlift/internal/config"
	"github.com/leadlift/leadlift/internal/store"
)

// resolveDBPath picks the database path: an explicit --db flag wins,
// otherwise the config file's storage path.
func resolveDBPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("db") {
		return dbPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return dbPath
	}
	return cfg.Storage.Path
}

// withStore opens the database, executes the function, and handles cleanup.
func withStore(cmd *cobra.Command, fn func(*store.SQLiteStore) error) error {
	s, err := store.Open(resolveDBPath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	return fn(s)
}

// loadRegistry builds the test registry from the config file.
func loadRegistry() (*config.Config, *abtest.Registry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	registry, err := abtest.NewRegistry(cfg.Tests)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid test config: %w", err)
	}

	return cfg, registry, nil
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
