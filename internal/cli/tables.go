package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Show reference cache statistics",
		Run:   runTables,
	}

	RootCmd.AddCommand(cmd)
}

func runTables(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		exitErr("load config", err)
	}
	if cfg.Data.DB == "" {
		exitErr("tables", fmt.Errorf("no cache configured (use --db or data.db)"))
	}

	s, err := openStore(cfg.Data.DB)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.Data.DB)
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "text" {
		for _, t := range stats.Tables {
			fmt.Printf("%s: %d\n", t.Table, t.Rows)
		}
		if stats.LastImport != nil {
			fmt.Printf("last import: %s from %s\n", stats.LastImport.ImportedAt, stats.LastImport.Source)
		}
		return
	}
	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}
