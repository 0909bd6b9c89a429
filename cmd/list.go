/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moamenhredeen/oasdoc/internal/app"
	"github.com/moamenhredeen/oasdoc/internal/output"
)

var (
	filter       string
	tags         []string
	outputFormat string
	outputFile   string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [openapi-spec]",
	Short: "List the operations of a document",
	Long: `List the operations of an OpenAPI document in the order of the
documentation menu. Operations listed under several tags appear once per tag.

Examples:
  oasdoc list openapi.yaml
  oasdoc list openapi.yaml --tags pets --filter /pets
  oasdoc list openapi.yaml -o csv --output-file operations.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := buildQuiet(args[0])
	if err != nil {
		return err
	}
	defer store.Dispose()

	rows := filterOperations(output.Operations(store.Menu.FlatItems()), filter, tags)

	if outputFormat != "" {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		if err := output.ExportOperations(rows, format, outputFile); err != nil {
			return fmt.Errorf("failed to export operations: %w", err)
		}
		if outputFile != "" {
			fmt.Printf("%d operations exported to: %s\n", len(rows), outputFile)
		}
		return nil
	}

	if len(rows) == 0 {
		fmt.Println("No operations found matching the criteria")
		return nil
	}
	displayOperations(rows)
	return nil
}

// buildQuiet loads a document for listing. Search is left disabled.
func buildQuiet(location string) (*app.Store, error) {
	opts, err := loadOptions()
	if err != nil {
		return nil, err
	}
	opts.DisableSearch = true
	src, err := sourceFor(location)
	if err != nil {
		return nil, err
	}
	return app.Build(context.Background(), src, opts, app.WithLogger(slog.Default()))
}

func filterOperations(rows []output.OperationRow, filterStr string, tagFilters []string) []output.OperationRow {
	var filtered []output.OperationRow

	for _, op := range rows {
		// Filter by path pattern or operation ID
		if filterStr != "" {
			if !strings.Contains(op.Path, filterStr) && !strings.Contains(op.OperationID, filterStr) {
				continue
			}
		}

		// Filter by tag, by display name or by the tag part of the item id
		if len(tagFilters) > 0 {
			found := false
			for _, filterTag := range tagFilters {
				if strings.EqualFold(op.Tag, filterTag) || strings.HasPrefix(op.ID, "tag/"+filterTag+"/") {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}

		filtered = append(filtered, op)
	}

	return filtered
}

func displayOperations(rows []output.OperationRow) {
	fmt.Printf("%s\n", white("=== Operations ==="))
	fmt.Printf("%-8s %-40s %-20s %s\n", "METHOD", "PATH", "TAG", "NAME")
	fmt.Println(strings.Repeat("-", 90))

	for _, r := range rows {
		path := r.Path
		if len(path) > 38 {
			path = path[:35] + "..."
		}
		name := r.Name
		if r.Deprecated {
			name += " " + yellow("(deprecated)")
		}
		if r.Webhook {
			name += " " + cyan("(webhook)")
		}
		// pad before coloring, escape codes would break the alignment
		verb := fmt.Sprintf("%-8s", r.Method)
		fmt.Printf("%s %-40s %-20s %s\n", verbColor(r.Method)+verb[len(r.Method):], path, r.Tag, name)
	}
	fmt.Printf("\nTotal: %d\n", len(rows))
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&filter, "filter", "", "Filter operations by path pattern or operation ID")
	listCmd.Flags().StringSliceVar(&tags, "tags", []string{}, "Filter by tags (can be specified multiple times)")
	listCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: json, csv")
	listCmd.Flags().StringVar(&outputFile, "output-file", "", "Write output to file (default: stdout)")
}
