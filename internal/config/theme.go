package config

// Theme holds the theme tokens used to generate the stylesheet.
type Theme struct {
	PrimaryColor       string
	TextColor          string
	RightPanelBG       string
	RightPanelText     string
	SuccessColor       string
	ErrorColor         string
	RedirectColor      string
	InfoColor          string
	FontFamily         string
	HeadingsFontFamily string
	CodeFontFamily     string
	FontSize           string
	SpacingUnit        int
	TonalOffset        float64
	SidebarWidth       string
	SidebarBackground  string
	RightPanelWidth    string
}

// RawTheme holds theme values as configured. Empty values take the defaults.
type RawTheme struct {
	PrimaryColor       string   `mapstructure:"primary_color"`
	TextColor          string   `mapstructure:"text_color"`
	RightPanelBG       string   `mapstructure:"right_panel_background"`
	RightPanelText     string   `mapstructure:"right_panel_text_color"`
	SuccessColor       string   `mapstructure:"success_color"`
	ErrorColor         string   `mapstructure:"error_color"`
	RedirectColor      string   `mapstructure:"redirect_color"`
	InfoColor          string   `mapstructure:"info_color"`
	FontFamily         string   `mapstructure:"font_family"`
	HeadingsFontFamily string   `mapstructure:"headings_font_family"`
	CodeFontFamily     string   `mapstructure:"code_font_family"`
	FontSize           string   `mapstructure:"font_size"`
	SpacingUnit        int      `mapstructure:"spacing_unit"`
	TonalOffset        *float64 `mapstructure:"tonal_offset"`
	SidebarWidth       string   `mapstructure:"sidebar_width"`
	SidebarBackground  string   `mapstructure:"sidebar_background"`
	RightPanelWidth    string   `mapstructure:"right_panel_width"`
}

// DefaultTheme returns the stock theme.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:       "#32329f",
		TextColor:          "#333333",
		RightPanelBG:       "#263238",
		RightPanelText:     "#ffffff",
		SuccessColor:       "#1d8127",
		ErrorColor:         "#d41f1c",
		RedirectColor:      "#ffa500",
		InfoColor:          "#87ceeb",
		FontFamily:         "Roboto, sans-serif",
		HeadingsFontFamily: "Montserrat, sans-serif",
		CodeFontFamily:     "Courier, monospace",
		FontSize:           "14px",
		SpacingUnit:        5,
		TonalOffset:        0.2,
		SidebarWidth:       "260px",
		SidebarBackground:  "#fafafa",
		RightPanelWidth:    "40%",
	}
}

// NormalizeTheme overlays the configured values onto DefaultTheme.
func NormalizeTheme(raw RawTheme) Theme {
	t := DefaultTheme()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&t.PrimaryColor, raw.PrimaryColor)
	set(&t.TextColor, raw.TextColor)
	set(&t.RightPanelBG, raw.RightPanelBG)
	set(&t.RightPanelText, raw.RightPanelText)
	set(&t.SuccessColor, raw.SuccessColor)
	set(&t.ErrorColor, raw.ErrorColor)
	set(&t.RedirectColor, raw.RedirectColor)
	set(&t.InfoColor, raw.InfoColor)
	set(&t.FontFamily, raw.FontFamily)
	set(&t.HeadingsFontFamily, raw.HeadingsFontFamily)
	set(&t.CodeFontFamily, raw.CodeFontFamily)
	set(&t.FontSize, raw.FontSize)
	set(&t.SidebarWidth, raw.SidebarWidth)
	set(&t.SidebarBackground, raw.SidebarBackground)
	set(&t.RightPanelWidth, raw.RightPanelWidth)
	if raw.SpacingUnit > 0 {
		t.SpacingUnit = raw.SpacingUnit
	}
	if raw.TonalOffset != nil {
		t.TonalOffset = *raw.TonalOffset
	}
	return t
}
