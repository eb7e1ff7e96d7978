package domain

import "strings"

// Color tags a perspective for display.
type Color string

const (
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

// Tone is the stance the extractor assigns to a perspective.
type Tone string

const (
	ToneSupportive Tone = "supportive"
	ToneCritical   Tone = "critical"
	ToneNeutral    Tone = "neutral"
)

// Color maps a tone onto its display color; unknown tones are purple.
func (t Tone) Color() Color {
	switch Tone(strings.ToLower(strings.TrimSpace(string(t)))) {
	case ToneSupportive:
		return ColorGreen
	case ToneCritical:
		return ColorRed
	case ToneNeutral:
		return ColorBlue
	default:
		return ColorPurple
	}
}

// ParseColor accepts one of the known palette values.
func ParseColor(value string) (Color, bool) {
	c := Color(strings.ToLower(strings.TrimSpace(value)))
	switch c {
	case ColorGreen, ColorRed, ColorBlue, ColorPurple:
		return c, true
	}
	return "", false
}
