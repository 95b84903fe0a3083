// Package cli implements the family-tree CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/family-tree/internal/config"
	"github.com/rcliao/family-tree/internal/generate"
	"github.com/rcliao/family-tree/internal/logging"
	"github.com/rcliao/family-tree/internal/population"
	"github.com/rcliao/family-tree/internal/refdata"
	"github.com/rcliao/family-tree/internal/store"
)

var (
	configPath string
	dataDir    string
	dbPath     string
	seedFlag   int64
	logLevel   string
	formatFlag string
)

// RootCmd is the top-level command. Without a subcommand it generates a
// tree and opens the interactive menu.
var RootCmd = &cobra.Command{
	Use:   "family-tree",
	Short: "Generate a simulated family tree",
	Long: "Grows a family tree from a founding couple using decade-indexed birth, marriage, " +
		"name and life expectancy tables, then answers questions about it.",
	Run: runRun,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $FAMILY_TREE_CONFIG or ./family-tree.yaml)")
	RootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Directory holding the reference CSV files")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite reference cache (read instead of --data when set)")
	RootCmd.PersistentFlags().Int64VarP(&seedFlag, "seed", "s", 0, "Random seed (0 picks a new one)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: info, debug or trace")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// loadConfig reads the config file and environment, then applies any
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := validateFormat(formatFlag); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Dir = dataDir
	}
	if flags.Changed("db") {
		cfg.Data.DB = dbPath
	}
	if flags.Changed("seed") {
		cfg.Seed = seedFlag
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	}
	return fmt.Errorf("invalid format %q (valid: json, text)", format)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, os.Stderr)
}

func openStore(path string) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(path)
}

// loadTables reads the reference tables from the SQLite cache when one is
// configured and from the CSV directory otherwise.
func loadTables(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*refdata.Tables, error) {
	if cfg.Data.DB != "" {
		s, err := openStore(cfg.Data.DB)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		defer s.Close()
		logger.Debug("loading reference tables", "db", cfg.Data.DB)
		return s.LoadTables(ctx)
	}
	logger.Debug("loading reference tables", "dir", cfg.Data.Dir)
	return refdata.LoadDir(cfg.Data.Dir)
}

// simulation is the outcome of one generation run.
type simulation struct {
	Seed   int64
	People *population.Store
	Stats  generate.Stats
}

// simulate loads the tables and grows a tree from the configured founders.
func simulate(ctx context.Context, cfg *config.Config, tables generate.Reference, logger *slog.Logger) (*simulation, error) {
	seed, err := cfg.ResolveSeed()
	if err != nil {
		return nil, err
	}

	pop := population.NewStore()
	ids := population.NewIDSource(population.Epoch, seed)
	engine := generate.NewEngine(rand.New(rand.NewSource(seed)), tables, pop, ids, cfg.Policy, logger)

	start := time.Now()
	if _, err := engine.Run(ctx, cfg.Founders[0], cfg.Founders[1]); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	stats := engine.Stats()
	logger.Info("tree generated",
		"seed", seed,
		"people", stats.People,
		"generations", stats.Generations,
		"duration", time.Since(start))

	return &simulation{Seed: seed, People: pop, Stats: stats}, nil
}

// prepare is the common front half of every generating command.
func prepare(cmd *cobra.Command) (*config.Config, *refdata.Tables, *slog.Logger) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		exitErr("load config", err)
	}
	logger := newLogger(cfg)

	tables, err := loadTables(cmd.Context(), cfg, logger)
	if err != nil {
		exitErr("load reference tables", err)
	}
	return cfg, tables, logger
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
