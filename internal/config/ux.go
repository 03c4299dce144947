package config

// UIConfig holds terminal rendering configuration.
type UIConfig struct {
	// RenderMarkdown passes model answers through glamour before printing.
	RenderMarkdown bool `yaml:"render_markdown"`

	// WordWrap is the glamour wrap width.
	WordWrap int `yaml:"word_wrap"`

	// Style is a glamour standard style name ("dark", "light", "notty") or
	// empty for auto-detection.
	Style string `yaml:"style"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		RenderMarkdown: true,
		WordWrap:       80,
	}
}
