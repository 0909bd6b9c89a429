/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moamenhredeen/oasdoc/internal/app"
	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/parser"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oasdoc",
	Short: "API reference documentation from OpenAPI documents",
	Long: `oasdoc renders three-panel API reference documentation from an OpenAPI 3
document.

It can serve the documentation with full-text search, write it to a single
static HTML file, or list and search the operations of a document.`,
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(logLevel)
	},
}

func Execute() {
	cobra.OnInitialize(initConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("oasdoc")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func setupLogger(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
	return nil
}

// optionFlags maps presentation flags to their "options.*" config keys.
var optionFlags = []struct {
	flag  string
	usage string
}{
	{"hide-schema-titles", "Hide titles of nested schemas"},
	{"hide-object-title", "Hide the title of object schemas"},
	{"hide-object-description", "Hide the description of object schemas"},
	{"hide-download-button", "Hide the document download link"},
	{"hide-loading", "Hide the loading indicator"},
	{"disable-search", "Disable full-text search"},
	{"required-props-first", "List required properties first"},
	{"sort-props-alphabetically", "Sort schema properties by name"},
	{"sort-tags-alphabetically", "Sort tags by name"},
	{"sort-operations-alphabetically", "Sort operations by name"},
	{"no-auto-auth", "Do not add the Authentication section"},
	{"untrusted-spec", "Sanitize markdown of the document"},
	{"path-in-middle-panel", "Show the endpoint path in the middle panel"},
	{"show-extensions", "Render x- extensions of operations"},
}

func optionKey(flag string) string {
	return "options." + strings.ReplaceAll(flag, "-", "_")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./oasdoc.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	flags := rootCmd.PersistentFlags()
	for _, f := range optionFlags {
		flags.Bool(f.flag, false, f.usage)
	}
	flags.String("expand-responses", "", `Response codes expanded by default, comma separated or "all"`)
	flags.String("json-sample-expand-level", "2", `Levels of JSON samples expanded by default, or "all"`)
	flags.Int("max-displayed-enum-values", 0, "Maximum enum values shown per field (0 = all)")
	flags.String("nonce", "", "Nonce of the inline style element")
	flags.String("primary-color", "", "Primary color of the theme")

	for _, f := range optionFlags {
		_ = viper.BindPFlag(optionKey(f.flag), flags.Lookup(f.flag))
	}
	for _, name := range []string{"expand-responses", "json-sample-expand-level", "max-displayed-enum-values", "nonce"} {
		_ = viper.BindPFlag(optionKey(name), flags.Lookup(name))
	}
	_ = viper.BindPFlag("options.theme.primary_color", flags.Lookup("primary-color"))
}

// sourceFor picks how a document location is loaded: URLs are fetched,
// "-" reads standard input and anything else is a file path.
func sourceFor(location string) (app.Source, error) {
	switch {
	case parser.IsURL(location):
		return app.Source{URL: location}, nil
	case location == "-":
		data, err := readStdin()
		if err != nil {
			return app.Source{}, fmt.Errorf("failed to read document from stdin: %w", err)
		}
		return app.Source{Spec: data}, nil
	default:
		return app.Source{File: location}, nil
	}
}

// loadOptions reads the presentation options from config, env and flags.
func loadOptions() (config.Options, error) {
	opts, err := config.LoadOptions(viper.GetViper())
	if err != nil {
		return config.Options{}, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}
