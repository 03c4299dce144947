// Package ui provides the visual styling for the Athena terminal.
// Colors adapt to light and dark terminals.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Athena palette.
var (
	// Light Mode Colors (Default)
	LightForeground = lipgloss.Color("#1f2430")
	LightPrimary    = lipgloss.Color("#5b3f8c") // Owl Purple
	LightAccent     = lipgloss.Color("#b8860b") // Olive Gold
	LightMuted      = lipgloss.Color("#6b7280")

	// Dark Mode Colors
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#c3a6f0")
	DarkAccent     = lipgloss.Color("#f0c94c")
	DarkMuted      = lipgloss.Color("#9ca3af")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935") // Red
	Success     = lipgloss.Color("#8BC34A") // Lime Green
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue
	Cyan        = lipgloss.Color("#26c6da")
)

// Theme holds the current color scheme
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		IsDark:     true,
	}
}

// DetectTheme picks dark mode from COLORFGBG or ATHENA_DARK_MODE=1,
// light mode otherwise.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		// "foreground;background"; 0-6 and 8 are dark backgrounds.
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	if os.Getenv("ATHENA_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Text
	Title  lipgloss.Style
	Muted  lipgloss.Style
	Prompt lipgloss.Style

	// Athena speaking
	Speaker  lipgloss.Style
	Thinking lipgloss.Style
	Via      lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Sleep   lipgloss.Style

	// Values
	Money  lipgloss.Style
	Asset  lipgloss.Style
	Level  lipgloss.Style
	Header lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Prompt: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),

		Speaker: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Thinking: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Italic(true),

		Via: lipgloss.NewStyle().
			Foreground(Warning),

		Success: lipgloss.NewStyle().
			Foreground(Success),

		Error: lipgloss.NewStyle().
			Foreground(Destructive),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Sleep: lipgloss.NewStyle().
			Foreground(Info),

		Money: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Asset: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Level: lipgloss.NewStyle().
			Foreground(Cyan),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Underline(true),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}
