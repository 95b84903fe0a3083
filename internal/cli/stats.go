package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/family-tree/internal/generate"
	"github.com/rcliao/family-tree/internal/population"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Generate a tree and print its statistics",
		Long:  "Generate a tree and print the total, per-decade counts and duplicated names in one go.",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

// treeReport is what the stats command prints.
type treeReport struct {
	Seed       int64                    `json:"seed"`
	Policy     generate.Policy          `json:"policy"`
	Total      int                      `json:"total"`
	ByDecade   []population.DecadeCount `json:"by_decade"`
	Duplicates []string                 `json:"duplicates"`
	Run        generate.Stats           `json:"run"`
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, tables, logger := prepare(cmd)

	sim, err := simulate(cmd.Context(), cfg, tables, logger)
	if err != nil {
		exitErr("stats", err)
	}

	report := treeReport{
		Seed:       sim.Seed,
		Policy:     cfg.Policy,
		Total:      sim.People.TotalCount(),
		ByDecade:   sim.People.DecadeCounts(),
		Duplicates: sim.People.DuplicateFullNames(),
		Run:        sim.Stats,
	}
	if report.Duplicates == nil {
		report.Duplicates = []string{}
	}

	if formatFlag == "text" {
		writeReportText(os.Stdout, report)
		return
	}
	b, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(b))
}

func writeReportText(w io.Writer, r treeReport) {
	fmt.Fprintf(w, "seed: %d\n", r.Seed)
	fmt.Fprintf(w, "The tree contains %d people total\n", r.Total)
	for _, dc := range r.ByDecade {
		fmt.Fprintf(w, "%s: %d\n", dc.Label, dc.Count)
	}
	if len(r.Duplicates) == 0 {
		fmt.Fprintln(w, "No duplicate names found.")
		return
	}
	fmt.Fprintf(w, "There are %d duplicate names in the tree:\n", len(r.Duplicates))
	for _, name := range r.Duplicates {
		fmt.Fprintf(w, "* %s\n", name)
	}
}
