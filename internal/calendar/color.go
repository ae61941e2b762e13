package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// Accent is the background treatment of a day cell. Gradient is set only
// when two or more category colours meet on the same day.
type Accent struct {
	Primary  string `json:"primary"`
	Soft     string `json:"soft"`
	Gradient string `json:"gradient,omitempty"`
}

const (
	accentSoftAlpha      = 0.35
	gradientPrimaryAlpha = 0.4
	gradientSecondAlpha  = 0.25
	gradientBase         = "rgba(30, 41, 59, 0.92)"
	luminanceThreshold   = 0.6
	darkText             = "#0f172a"
	lightText            = "#f8fafc"
	neutralText          = "#e2e8f0"
)

// fallbackRGB is used when a colour cannot be parsed.
var fallbackRGB = RGB{R: 148, G: 163, B: 184}

// AccentFor builds the accent for a day's colours. Only the first two
// colours are ever considered.
func AccentFor(colors []string) *Accent {
	if len(colors) == 0 {
		return nil
	}
	primary := colors[0]
	a := &Accent{
		Primary: primary,
		Soft:    RGBA(primary, accentSoftAlpha),
	}
	if len(colors) > 1 {
		a.Gradient = fmt.Sprintf("linear-gradient(135deg, %s 0%%, %s 55%%, %s 100%%)",
			RGBA(primary, gradientPrimaryAlpha),
			RGBA(colors[1], gradientSecondAlpha),
			gradientBase,
		)
	}
	return a
}

// RGB is an 8-bit colour.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses "#RGB" or "#RRGGBB" (the leading # is optional). Short
// forms are expanded by doubling each digit.
func ParseHex(hex string) (RGB, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// RGBA renders hex as a CSS rgba() with the given opacity. Invalid colours
// fall back to a neutral gray at the same opacity.
func RGBA(hex string, alpha float64) string {
	c, ok := ParseHex(hex)
	if !ok {
		c = fallbackRGB
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// Luminance is the relative luminance of c in [0, 1].
func Luminance(c RGB) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}

// ReadableText picks a dark or light text colour for a background.
func ReadableText(hex string) string {
	c, ok := ParseHex(hex)
	if !ok {
		return neutralText
	}
	if Luminance(c) > luminanceThreshold {
		return darkText
	}
	return lightText
}

// NamedColor is an entry of the category colour palette.
type NamedColor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Palette is offered to users when creating a category.
var Palette = []NamedColor{
	{Name: "Sky", Value: "#38bdf8"},
	{Name: "Ocean", Value: "#0ea5e9"},
	{Name: "Azure", Value: "#2563eb"},
	{Name: "Indigo", Value: "#6366f1"},
	{Name: "Violet", Value: "#8b5cf6"},
	{Name: "Magenta", Value: "#d946ef"},
	{Name: "Pink", Value: "#ec4899"},
	{Name: "Rose", Value: "#f87171"},
	{Name: "Orange", Value: "#f97316"},
	{Name: "Amber", Value: "#f59e0b"},
	{Name: "Sunrise", Value: "#fbbf24"},
	{Name: "Lime", Value: "#84cc16"},
	{Name: "Emerald", Value: "#10b981"},
	{Name: "Teal", Value: "#14b8a6"},
	{Name: "Slate", Value: "#64748b"},
}
