package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"cricdb/internal/queries"

	"github.com/spf13/cobra"
)

var (
	reportAll    bool
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report [query]",
	Short: "Run a catalog query against the loaded matches",
	Long: `Executes one named query from the fixed report catalog, or every query
with --all. Run 'cricdb queries' to list the catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportAll, "all", false, "Run every catalog query")
	reportCmd.Flags().StringVar(&reportFormat, "format", "table", "Output format (table, json)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportAll == (len(args) == 1) {
		return fmt.Errorf("name exactly one query, or pass --all")
	}
	if reportFormat != "table" && reportFormat != "json" {
		return fmt.Errorf("unknown format %q", reportFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	catalog, err := queries.LoadCatalog()
	if err != nil {
		return err
	}
	runner := queries.NewRunner(catalog, db)

	ctx, cancel := newContext()
	defer cancel()

	var results []*queries.Result
	if reportAll {
		results, err = runner.RunAll(ctx)
	} else {
		var res *queries.Result
		res, err = runner.Run(ctx, args[0])
		results = []*queries.Result{res}
	}
	if err != nil {
		return err
	}

	if reportFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if reportAll {
			return enc.Encode(results)
		}
		return enc.Encode(results[0])
	}

	for i, res := range results {
		if i > 0 {
			fmt.Println()
		}
		printResultTable(res)
	}
	return nil
}

func printResultTable(res *queries.Result) {
	fmt.Printf("%s (%s)\n", res.Title, res.Name)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, col := range res.Columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)

	for _, row := range res.Rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, formatCell(cell))
		}
		fmt.Fprintln(w)
	}
	w.Flush()

	if len(res.Rows) == 0 {
		fmt.Println("(no rows)")
	}
}

func formatCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return "-"
	case float64:
		return strconv.FormatFloat(c, 'f', 2, 64)
	default:
		return fmt.Sprint(c)
	}
}
