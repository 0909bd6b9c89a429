/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moamenhredeen/oasdoc/internal/app"
	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/db"
	"github.com/moamenhredeen/oasdoc/internal/search"
	"github.com/moamenhredeen/oasdoc/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [openapi-spec]",
	Short: "Serve the API documentation",
	Long: `Serve the documentation of an OpenAPI document over HTTP.

The document can be a file path, an http(s) URL or "-" for standard input.
Besides the page, the server exposes the document as JSON, the flattened
menu, a rate limited search API and prometheus metrics.

Examples:
  # Serve a local document on :8080
  oasdoc serve openapi.yaml

  # Serve a remote document, caching its search index
  oasdoc serve https://example.com/openapi.json --index-cache oasdoc.db

  # Limit search to 5 requests per second
  oasdoc serve openapi.yaml --search-rate 5 --search-burst 10`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	cfg := config.LoadServer(viper.GetViper())

	src, err := sourceFor(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := search.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register search metrics: %w", err)
	}

	buildOpts := []app.BuildOption{
		app.WithLogger(slog.Default()),
		app.WithSearchMetrics(metrics),
	}
	if cfg.IndexCache != "" {
		cache, err := db.Open(cfg.IndexCache)
		if err != nil {
			return fmt.Errorf("failed to open index cache: %w", err)
		}
		defer cache.Close()
		buildOpts = append(buildOpts, app.WithIndexCache(cache))
	}

	start := time.Now()
	store, err := app.Build(ctx, src, opts, buildOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Dispose(); err != nil {
			slog.Warn("failed to dispose store", "error", err)
		}
	}()
	slog.Info("document loaded",
		"title", store.Info.Title,
		"version", store.Info.Version,
		"items", len(store.Menu.FlatItems()),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	srv, err := server.New(store, cfg, server.WithLogger(slog.Default()), server.WithRegistry(reg))
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errc
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().Duration("read-timeout", 15*time.Second, "HTTP read timeout")
	serveCmd.Flags().Duration("write-timeout", 15*time.Second, "HTTP write timeout")
	serveCmd.Flags().Float64("search-rate", 0, "Max search requests per second (0 = unlimited)")
	serveCmd.Flags().Int("search-burst", 1, "Search requests allowed above the rate")
	serveCmd.Flags().String("index-cache", "", "SQLite file caching search indexes (default: no cache)")

	for _, name := range []string{"addr", "read-timeout", "write-timeout", "search-rate", "search-burst", "index-cache"} {
		_ = viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), serveCmd.Flags().Lookup(name))
	}
}
