package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/config"
	"github.com/abhisek/adaptutor/internal/content"
	"github.com/abhisek/adaptutor/internal/logging"
	"github.com/abhisek/adaptutor/internal/notify"
	"github.com/abhisek/adaptutor/internal/progress"
	"github.com/abhisek/adaptutor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "adaptutor",
	Short: "Adaptive tutoring engine",
	Long:  "adaptutor diagnoses a learner's level, serves content at that level, grades quizzes and tracks mastery per module.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides ADAPTUTOR_DB env var)")
	pf.String("store", "sqlite", "Store backend: memory, sqlite or redis")
	pf.String("redis-url", "", "Redis URL for --store redis (overrides ADAPTUTOR_REDIS_URL)")
	pf.String("config", "", "YAML configuration file")
	pf.String("catalog", "", "Catalog JSON file (defaults to the built-in catalog)")
	pf.String("log-mode", "quiet", "Log mode: dev, prod or quiet")
	pf.String("env-file", ".env", "dotenv file loaded before reading ADAPTUTOR_* variables")
	pf.Bool("json", false, "Print decisions as JSON")

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(moduleCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadDotEnv loads the env file if present. Variables already set win.
func loadDotEnv(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then ADAPTUTOR_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	return config.FromEnv(cfg)
}

func resolveCatalog(cmd *cobra.Command) (*content.Catalog, error) {
	if p, _ := cmd.Flags().GetString("catalog"); p != "" {
		return content.LoadCatalog(p)
	}
	return content.DefaultCatalog()
}

func openStore(ctx context.Context, cmd *cobra.Command) (store.Store, error) {
	kind, _ := cmd.Flags().GetString("store")
	switch kind {
	case "memory":
		return store.Open(ctx, kind, "")
	case "redis":
		url, _ := cmd.Flags().GetString("redis-url")
		if url == "" {
			url = os.Getenv("ADAPTUTOR_REDIS_URL")
		}
		if url == "" {
			return nil, fmt.Errorf("--store redis needs --redis-url or ADAPTUTOR_REDIS_URL")
		}
		return store.Open(ctx, kind, url)
	default:
		path, err := resolveDBPath(cmd)
		if err != nil {
			return nil, err
		}
		return store.Open(ctx, kind, path)
	}
}

// app bundles what a command needs to talk to the tracker.
type app struct {
	tracker *progress.Tracker
	store   store.Store
	logger  *logging.Logger
	pub     *notify.Publisher
	bus     *gochannel.GoChannel
}

func (a *app) Close() {
	if a.pub != nil {
		a.pub.Close()
	}
	a.store.Close()
	a.logger.Sync()
}

func newApp(cmd *cobra.Command) (*app, error) {
	mode, _ := cmd.Flags().GetString("log-mode")
	logger, err := logging.New(mode)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	cat, err := resolveCatalog(cmd)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}

	pub, bus := notify.NewGoChannel(logger)
	tracker, err := progress.New(st, cat, cfg,
		progress.WithLogger(logger),
		progress.WithNotifier(pub),
	)
	if err != nil {
		pub.Close()
		st.Close()
		return nil, err
	}
	return &app{tracker: tracker, store: st, logger: logger, pub: pub, bus: bus}, nil
}
