package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("ATHENA_DARK_MODE", "1")
	assert.True(t, DetectTheme().IsDark, "ATHENA_DARK_MODE=1 selects dark")

	t.Setenv("ATHENA_DARK_MODE", "")
	assert.False(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, DetectTheme().IsDark, "black background selects dark")

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, DetectTheme().IsDark)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "R$ 100.00", BRL(100))
	assert.Equal(t, "R$ 45.68", BRL(45.678))
	assert.Equal(t, "0.00012345 BTC", BTC(0.000123449))
	assert.Equal(t, "+1.5%", SignedPercent(1.5))
	assert.Equal(t, "+0%", SignedPercent(0))
	assert.Equal(t, "-0.32%", SignedPercent(-0.32))
}

func TestRenderer_PlainTrims(t *testing.T) {
	r := NewRenderer(NewStyles(LightTheme()), RenderOptions{Markdown: false})
	assert.Equal(t, "Olá, Pai!", r.Answer("  Olá, Pai!\n"))
	assert.Equal(t, "", r.Answer("   "))
}

func TestRenderer_MarkdownKeepsText(t *testing.T) {
	r := NewRenderer(NewStyles(LightTheme()), RenderOptions{Markdown: true, WordWrap: 60, Style: "notty"})
	out := r.Answer("**Bitcoin** subiu hoje.")
	assert.Contains(t, out, "Bitcoin")
	assert.Contains(t, out, "subiu hoje.")
}
