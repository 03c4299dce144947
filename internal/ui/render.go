package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"athena/internal/logging"
)

// RenderOptions configures a Renderer.
type RenderOptions struct {
	Markdown bool
	WordWrap int
	// Style is a glamour standard style name; empty picks one from the theme.
	Style string
}

// Renderer turns model answers into terminal output.
type Renderer struct {
	styles   Styles
	markdown *glamour.TermRenderer
}

// NewRenderer builds a renderer. If glamour cannot be initialised the
// renderer falls back to plain text.
func NewRenderer(styles Styles, opts RenderOptions) *Renderer {
	r := &Renderer{styles: styles}
	if !opts.Markdown {
		return r
	}

	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = 80
	}

	var styleOpt glamour.TermRendererOption
	switch {
	case opts.Style != "":
		styleOpt = glamour.WithStandardStyle(opts.Style)
	case styles.Theme.IsDark:
		styleOpt = glamour.WithAutoStyle()
	default:
		styleOpt = glamour.WithStandardStyle("light")
	}

	md, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		logging.SessionWarn("markdown renderer unavailable: %v", err)
		return r
	}
	r.markdown = md
	return r
}

// Styles returns the renderer's styles.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Answer renders an answer body. Surrounding whitespace is trimmed here,
// not by the client.
func (r *Renderer) Answer(text string) (result string) {
	text = strings.TrimSpace(text)
	if r.markdown == nil || text == "" {
		return text
	}
	defer func() {
		if rec := recover(); rec != nil {
			// If glamour panics, return plain text
			result = text
		}
	}()
	rendered, err := r.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(rendered, "\n")
}
