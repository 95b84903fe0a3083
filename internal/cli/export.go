package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/refdata"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate a tree and export every person as JSON",
		Long:  "Generate a tree and print every person, in creation order, as a JSON array. Filter by birth decade with --decade.",
		Run:   runExport,
	}

	cmd.Flags().String("decade", "", "Only people born in this decade, e.g. 1980s")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	decadeStr, _ := cmd.Flags().GetString("decade")

	cfg, tables, logger := prepare(cmd)

	decade := 0
	if decadeStr != "" {
		d, err := refdata.ParseDecade(decadeStr)
		if err != nil {
			exitErr("parse decade", err)
		}
		decade = d
	}

	sim, err := simulate(cmd.Context(), cfg, tables, logger)
	if err != nil {
		exitErr("export", err)
	}

	people := sim.People.All()
	if decade != 0 {
		people = filterByDecade(people, decade)
	}

	b, _ := json.MarshalIndent(people, "", "  ")
	fmt.Println(string(b))
}

func filterByDecade(people []*model.Person, decade int) []*model.Person {
	out := make([]*model.Person, 0, len(people))
	for _, p := range people {
		if refdata.DecadeOf(p.YearBorn) == decade {
			out = append(out, p)
		}
	}
	return out
}
