package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/family-tree/internal/population"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a tree and query it interactively",
		Long:  "Generate a tree, then answer (T)otal, (D)ecade and (N)ames questions until (Q)uit. This is the default command.",
		Run:   runRun,
	}

	RootCmd.AddCommand(cmd)
}

func runRun(cmd *cobra.Command, args []string) {
	fmt.Println("Reading files...")
	cfg, tables, logger := prepare(cmd)

	fmt.Println("Generating family tree...")
	sim, err := simulate(cmd.Context(), cfg, tables, logger)
	if err != nil {
		exitErr("run", err)
	}

	if err := runMenu(os.Stdin, os.Stdout, sim.People); err != nil {
		exitErr("menu", err)
	}
}

// runMenu answers queries about pop until the user quits or in is
// exhausted.
func runMenu(in io.Reader, out io.Writer, pop *population.Store) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintln(out, "\nAre you interested in:")
		fmt.Fprintln(out, "(T)otal number of people in the tree")
		fmt.Fprintln(out, "Total number of people in the tree by (D)ecade")
		fmt.Fprintln(out, "(N)ames duplicated")
		fmt.Fprintln(out, "(Q)uit")
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		switch strings.ToUpper(strings.TrimSpace(scanner.Text())) {
		case "T":
			fmt.Fprintf(out, "The tree contains %d people total\n", pop.TotalCount())
		case "D":
			for _, dc := range pop.DecadeCounts() {
				fmt.Fprintf(out, "%s: %d\n", dc.Label, dc.Count)
			}
		case "N":
			dups := pop.DuplicateFullNames()
			if len(dups) == 0 {
				fmt.Fprintln(out, "No duplicate names found.")
				continue
			}
			fmt.Fprintf(out, "There are %d duplicate names in the tree:\n", len(dups))
			for _, name := range dups {
				fmt.Fprintf(out, "* %s\n", name)
			}
		case "Q":
			fmt.Fprintln(out, "Exiting program.")
			return nil
		default:
			fmt.Fprintln(out, "Invalid choice, please try again.")
		}
	}
}
