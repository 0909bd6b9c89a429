// Package config holds the presentation options and server settings, loaded
// from viper so that flags, OASDOC_* environment variables and oasdoc.toml
// all feed the same keys.
package config

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// EnvPrefix is the environment variable prefix bound to viper.
const EnvPrefix = "OASDOC"

// ExpandAll is the raw value that expands every response or sample level.
const ExpandAll = "all"

// Options holds the normalized presentation options.
type Options struct {
	HideSchemaTitles             bool
	HideObjectTitle              bool
	HideObjectDescription        bool
	HideDownloadButton           bool
	HideLoading                  bool
	DisableSearch                bool
	RequiredPropsFirst           bool
	SortPropsAlphabetically      bool
	SortTagsAlphabetically       bool
	SortOperationsAlphabetically bool
	NoAutoAuth                   bool
	UntrustedSpec                bool
	PathInMiddlePanel            bool
	ShowExtensions               bool
	BackgroundSearch             bool

	// ExpandAllResponses is set when expandResponses is "all".
	ExpandAllResponses bool
	// ExpandResponses lists the response codes expanded by default.
	ExpandResponses map[string]bool

	// JSONSampleExpandLevel is the deepest level of the JSON viewer that
	// starts expanded.
	JSONSampleExpandLevel int
	// MaxDisplayedEnumValues limits the enum values listed per field, zero
	// shows all of them.
	MaxDisplayedEnumValues int
	// PayloadSampleIdx is where the request payload sample is inserted among
	// the code samples.
	PayloadSampleIdx int

	Nonce string
	Theme Theme
}

// Raw holds option values as they come from the config file or flags.
type Raw struct {
	HideSchemaTitles             bool     `mapstructure:"hide_schema_titles"`
	HideObjectTitle              bool     `mapstructure:"hide_object_title"`
	HideObjectDescription        bool     `mapstructure:"hide_object_description"`
	HideDownloadButton           bool     `mapstructure:"hide_download_button"`
	HideLoading                  bool     `mapstructure:"hide_loading"`
	DisableSearch                bool     `mapstructure:"disable_search"`
	RequiredPropsFirst           bool     `mapstructure:"required_props_first"`
	SortPropsAlphabetically      bool     `mapstructure:"sort_props_alphabetically"`
	SortTagsAlphabetically       bool     `mapstructure:"sort_tags_alphabetically"`
	SortOperationsAlphabetically bool     `mapstructure:"sort_operations_alphabetically"`
	NoAutoAuth                   bool     `mapstructure:"no_auto_auth"`
	UntrustedSpec                bool     `mapstructure:"untrusted_spec"`
	PathInMiddlePanel            bool     `mapstructure:"path_in_middle_panel"`
	ShowExtensions               bool     `mapstructure:"show_extensions"`
	BackgroundSearch             *bool    `mapstructure:"background_search"`
	ExpandResponses              string   `mapstructure:"expand_responses"`
	JSONSampleExpandLevel        string   `mapstructure:"json_sample_expand_level"`
	MaxDisplayedEnumValues       int      `mapstructure:"max_displayed_enum_values"`
	PayloadSampleIdx             *int     `mapstructure:"payload_sample_idx"`
	Nonce                        string   `mapstructure:"nonce"`
	Theme                        RawTheme `mapstructure:"theme"`
}

// Defaults returns the options used when nothing is configured.
func Defaults() Options {
	return Normalize(Raw{})
}

// Normalize converts raw option values into typed options.
func Normalize(raw Raw) Options {
	opts := Options{
		HideSchemaTitles:             raw.HideSchemaTitles,
		HideObjectTitle:              raw.HideObjectTitle,
		HideObjectDescription:        raw.HideObjectDescription,
		HideDownloadButton:           raw.HideDownloadButton,
		HideLoading:                  raw.HideLoading,
		DisableSearch:                raw.DisableSearch,
		RequiredPropsFirst:           raw.RequiredPropsFirst,
		SortPropsAlphabetically:      raw.SortPropsAlphabetically,
		SortTagsAlphabetically:       raw.SortTagsAlphabetically,
		SortOperationsAlphabetically: raw.SortOperationsAlphabetically,
		NoAutoAuth:                   raw.NoAutoAuth,
		UntrustedSpec:                raw.UntrustedSpec,
		PathInMiddlePanel:            raw.PathInMiddlePanel,
		ShowExtensions:               raw.ShowExtensions,
		BackgroundSearch:             raw.BackgroundSearch == nil || *raw.BackgroundSearch,
		ExpandResponses:              map[string]bool{},
		JSONSampleExpandLevel:        normalizeExpandLevel(raw.JSONSampleExpandLevel),
		MaxDisplayedEnumValues:       raw.MaxDisplayedEnumValues,
		Nonce:                        raw.Nonce,
		Theme:                        NormalizeTheme(raw.Theme),
	}

	if raw.PayloadSampleIdx != nil && *raw.PayloadSampleIdx > 0 {
		opts.PayloadSampleIdx = *raw.PayloadSampleIdx
	}
	if opts.MaxDisplayedEnumValues < 0 {
		opts.MaxDisplayedEnumValues = 0
	}

	expand := strings.TrimSpace(raw.ExpandResponses)
	if expand == ExpandAll {
		opts.ExpandAllResponses = true
	} else if expand != "" {
		for _, code := range strings.Split(expand, ",") {
			if code = strings.TrimSpace(code); code != "" {
				opts.ExpandResponses[code] = true
			}
		}
	}

	return opts
}

// normalizeExpandLevel maps "all" to an unbounded level and rounds fractional
// levels up. Anything unparsable falls back to 2.
func normalizeExpandLevel(value string) int {
	value = strings.TrimSpace(value)
	if value == ExpandAll {
		return math.MaxInt32
	}
	if value == "" {
		return 2
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 2
	}
	return int(math.Ceil(f))
}

// LoadOptions reads the "options" tree of v. Flags bound to "options.*"
// keys are included.
func LoadOptions(v *viper.Viper) (Options, error) {
	if v == nil {
		v = viper.GetViper()
	}
	var cfg struct {
		Options Raw `mapstructure:"options"`
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Options{}, err
	}
	return Normalize(cfg.Options), nil
}

// Server holds the settings of the documentation server.
type Server struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// SearchRate is the number of search requests per second allowed, with
	// SearchBurst extra requests on top.
	SearchRate  float64
	SearchBurst int
	// IndexCache is the sqlite file caching search index snapshots. Empty
	// disables the cache.
	IndexCache string
}

// LoadServer reads the server settings, which cobra binds to its flags.
func LoadServer(v *viper.Viper) Server {
	if v == nil {
		v = viper.GetViper()
	}
	return Server{
		Addr:         v.GetString("addr"),
		ReadTimeout:  v.GetDuration("read_timeout"),
		WriteTimeout: v.GetDuration("write_timeout"),
		SearchRate:   v.GetFloat64("search_rate"),
		SearchBurst:  v.GetInt("search_burst"),
		IndexCache:   v.GetString("index_cache"),
	}
}
