package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leadlift/leadlift/internal/abtest"
	"github.com/leadlift/leadlift/internal/content"
	"github.com/leadlift/leadlift/internal/scoring"
	"github.com/leadlift/leadlift/internal/server"
	"github.com/leadlift/leadlift/internal/store"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the leadlift HTTP server.

The server provides:
  - Blog post, search and recommendation endpoints
  - Lead event tracking and scoring
  - A/B variant assignment and conversion tracking
  - Admin dashboard with aggregate metrics

Example:
  leadlift serve --port 8080`,
	RunE: runServe,
}

func init() {
	defaultPort := 8080
	if p := os.Getenv("LL_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			defaultPort = parsed
		}
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", defaultPort, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := buildServer(cmd)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Start()
}

// builtServer bundles the server with the store it owns.
type builtServer struct {
	*server.Server
	store *store.SQLiteStore
}

func (b *builtServer) Close() {
	b.store.Close()
}

func buildServer(cmd *cobra.Command) (*builtServer, error) {
	cfg, registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.Path = dbPath
	}

	s, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	library := content.LoadOrSample(cfg.Content.Dir, logger)

	tokenFile := cfg.Server.TokenFile
	if tokenFile == "" {
		tokenFile = filepath.Join(filepath.Dir(cfg.Storage.Path), ".leadlift-token")
	}

	srv := server.New(server.Config{
		Store:     s,
		Scoring:   scoring.NewEngine(s),
		Registry:  registry,
		Assigner:  abtest.NewAssigner(registry, s),
		Library:   library,
		Logger:    logger,
		Port:      cfg.Server.Port,
		TokenFile: tokenFile,
	})

	return &builtServer{Server: srv, store: s}, nil
}
