/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/moamenhredeen/oasdoc/internal/app"
	"github.com/moamenhredeen/oasdoc/internal/output"
)

var searchLimit int

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [openapi-spec] [query]",
	Short: "Search the documentation of a document",
	Long: `Search the sections, tags and operations of an OpenAPI document the way the
documentation page does. Every term of the query matches anywhere inside
words, matches in names rank first.

Examples:
  oasdoc search openapi.yaml pets
  oasdoc search openapi.yaml "list pets" --limit 5 -o json`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	opts.DisableSearch = false
	// results are read right away, indexing in the background gains nothing
	opts.BackgroundSearch = false

	src, err := sourceFor(args[0])
	if err != nil {
		return err
	}
	store, err := app.Build(context.Background(), src, opts, app.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer store.Dispose()

	results, err := store.Search.Search(args[1])
	if err != nil {
		return err
	}
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	rows := make([]output.SearchRow, 0, len(results))
	for _, res := range results {
		row := output.SearchRow{ID: res.Meta, Score: res.Score}
		if item := store.Menu.GetItemByID(res.Meta); item != nil {
			row.Name = item.Item().Name
			row.Type = item.Item().Type
		}
		rows = append(rows, row)
	}

	if outputFormat != "" {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		if err := output.ExportSearchResults(rows, format, outputFile); err != nil {
			return fmt.Errorf("failed to export results: %w", err)
		}
		return nil
	}

	if len(rows) == 0 {
		fmt.Printf("No results for %q\n", args[1])
		return nil
	}
	for i, r := range rows {
		fmt.Printf("%3d. %s %s\n", i+1, white(r.Name), yellow("["+string(r.Type)+"]"))
		fmt.Printf("     %s #%s (score %.3f)\n", cyan("→"), r.ID, r.Score)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum number of results (0 = all)")
	searchCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: json, csv")
	searchCmd.Flags().StringVar(&outputFile, "output-file", "", "Write output to file (default: stdout)")
}
