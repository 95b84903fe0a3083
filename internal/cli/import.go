package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/family-tree/internal/refdata"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [dir]",
		Short: "Import the reference CSV files into the SQLite cache",
		Long: "Read the five reference CSV files from dir (default: --data) and replace the tables " +
			"held in the cache given by --db.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		exitErr("load config", err)
	}
	logger := newLogger(cfg)

	if cfg.Data.DB == "" {
		exitErr("import", fmt.Errorf("no cache configured (use --db or data.db)"))
	}
	dir := cfg.Data.Dir
	if len(args) == 1 {
		dir = args[0]
	}

	tables, err := refdata.LoadDir(dir)
	if err != nil {
		exitErr("read csv", err)
	}

	s, err := openStore(cfg.Data.DB)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imp, err := s.ImportTables(cmd.Context(), tables, dir)
	if err != nil {
		exitErr("import", err)
	}
	logger.Info("reference tables imported", "db", cfg.Data.DB, "source", dir)

	b, _ := json.MarshalIndent(imp, "", "  ")
	fmt.Println(string(b))
}
