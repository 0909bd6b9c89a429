/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/moamenhredeen/oasdoc/internal/app"
)

var buildOutput string

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [openapi-spec]",
	Short: "Write the API documentation to a static HTML file",
	Long: `Render the documentation of an OpenAPI document into a single HTML file.

Search needs the server and is disabled in static pages. The download link is
kept only for documents loaded from a URL.

Examples:
  oasdoc build openapi.yaml -o docs/index.html
  oasdoc build https://example.com/openapi.json --expand-responses 200,201`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	opts.DisableSearch = true

	src, err := sourceFor(args[0])
	if err != nil {
		return err
	}
	if src.URL == "" {
		opts.HideDownloadButton = true
	}

	var s *spinner.Spinner
	if isTTY {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" Rendering %s...", src.Location())
		s.Start()
	}
	stopSpinner := func() {
		if s != nil {
			s.Stop()
		}
	}

	start := time.Now()
	store, err := app.Build(context.Background(), src, opts, app.WithLogger(slog.Default()))
	if err != nil {
		stopSpinner()
		return err
	}
	defer store.Dispose()

	if err := writePage(store, buildOutput); err != nil {
		stopSpinner()
		return err
	}
	stopSpinner()

	fmt.Printf("%s %s written in %v (%d menu items)\n",
		green("✓"), white(buildOutput), time.Since(start).Round(time.Millisecond), len(store.Menu.FlatItems()))
	return nil
}

func writePage(store *app.Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := store.RenderPage(w, ""); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render page: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "redoc-static.html", "Output HTML file")
}
