package config

import (
	"math"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	opts := Defaults()

	if opts.JSONSampleExpandLevel != 2 {
		t.Errorf("Expected expand level 2, got %d", opts.JSONSampleExpandLevel)
	}
	if !opts.BackgroundSearch {
		t.Error("Expected background search by default")
	}
	if opts.PayloadSampleIdx != 0 {
		t.Errorf("Expected payload sample index 0, got %d", opts.PayloadSampleIdx)
	}
	if opts.Theme.PrimaryColor != "#32329f" {
		t.Errorf("Unexpected primary color %s", opts.Theme.PrimaryColor)
	}
}

func TestNormalizeExpandLevel(t *testing.T) {
	tests := map[string]int{
		"":    2,
		"all": math.MaxInt32,
		"3":   3,
		"1.2": 2,
		"bad": 2,
	}
	for in, want := range tests {
		if got := normalizeExpandLevel(in); got != want {
			t.Errorf("normalizeExpandLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestNormalizeExpandResponses(t *testing.T) {
	opts := Normalize(Raw{ExpandResponses: "200, 201"})
	if !opts.ExpandResponses["200"] || !opts.ExpandResponses["201"] {
		t.Errorf("Unexpected expand responses %v", opts.ExpandResponses)
	}
	if opts.ExpandAllResponses {
		t.Error("Did not expect all responses expanded")
	}

	opts = Normalize(Raw{ExpandResponses: "all"})
	if !opts.ExpandAllResponses {
		t.Error("Expected all responses expanded")
	}
}

func TestLoadOptions(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	cfg := `
[options]
hide_download_button = true
required_props_first = true
expand_responses = "all"
json_sample_expand_level = "all"
background_search = false
payload_sample_idx = 2

[options.theme]
primary_color = "#ff0000"
tonal_offset = 0.3
`
	if err := v.ReadConfig(strings.NewReader(cfg)); err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	opts, err := LoadOptions(v)
	if err != nil {
		t.Fatalf("Failed to load options: %v", err)
	}

	if !opts.HideDownloadButton || !opts.RequiredPropsFirst || !opts.ExpandAllResponses {
		t.Errorf("Unexpected options %+v", opts)
	}
	if opts.BackgroundSearch {
		t.Error("Expected background search disabled")
	}
	if opts.PayloadSampleIdx != 2 {
		t.Errorf("Expected payload sample index 2, got %d", opts.PayloadSampleIdx)
	}
	if opts.JSONSampleExpandLevel != math.MaxInt32 {
		t.Errorf("Unexpected expand level %d", opts.JSONSampleExpandLevel)
	}
	if opts.Theme.PrimaryColor != "#ff0000" || opts.Theme.TonalOffset != 0.3 {
		t.Errorf("Unexpected theme %+v", opts.Theme)
	}
	if opts.Theme.TextColor != "#333333" {
		t.Errorf("Expected default text color, got %s", opts.Theme.TextColor)
	}
}

func TestLoadOptionsEmpty(t *testing.T) {
	opts, err := LoadOptions(viper.New())
	if err != nil {
		t.Fatalf("Failed to load options: %v", err)
	}
	if opts.JSONSampleExpandLevel != 2 {
		t.Errorf("Expected defaults, got %+v", opts)
	}
}

func TestLoadServer(t *testing.T) {
	v := viper.New()
	v.Set("addr", ":9000")
	v.Set("read_timeout", "5s")
	v.Set("search_rate", 2.5)

	s := LoadServer(v)
	if s.Addr != ":9000" || s.ReadTimeout.Seconds() != 5 || s.SearchRate != 2.5 {
		t.Errorf("Unexpected server settings %+v", s)
	}
}

func TestLoadOptionsNestedKeys(t *testing.T) {
	v := viper.New()
	v.Set("options.disable_search", true)
	v.Set("options.theme.primary_color", "#00ff00")

	opts, err := LoadOptions(v)
	if err != nil {
		t.Fatalf("Failed to load options: %v", err)
	}
	if !opts.DisableSearch {
		t.Error("Expected search disabled")
	}
	if opts.Theme.PrimaryColor != "#00ff00" {
		t.Errorf("Unexpected primary color %s", opts.Theme.PrimaryColor)
	}
}
