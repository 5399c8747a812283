package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"cricdb/internal/queries"

	"github.com/spf13/cobra"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List the report catalog",
	Long:  "Lists every query in the report catalog with its title and columns.",
	RunE:  runQueries,
}

func init() {
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, args []string) error {
	catalog, err := queries.LoadCatalog()
	if err != nil {
		return err
	}

	fmt.Printf("Report catalog v%d (%d queries)\n\n", catalog.Version, len(catalog.Names()))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTITLE\tCOLUMNS")
	for _, name := range catalog.Names() {
		q := catalog.Get(name)
		fmt.Fprintf(w, "%s\t%s\t%s\n", q.Name, q.Title, strings.Join(q.Columns, ", "))
	}
	return w.Flush()
}
