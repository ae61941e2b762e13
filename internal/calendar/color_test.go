package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"minical/internal/validate"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
		ok   bool
	}{
		{"#4caf50", RGB{76, 175, 80}, true},
		{"#FFF", RGB{255, 255, 255}, true},
		{"#abc", RGB{0xaa, 0xbb, 0xcc}, true},
		{"2196f3", RGB{33, 150, 243}, true},
		{"", RGB{}, false},
		{"#ffff", RGB{}, false},
		{"#zzzzzz", RGB{}, false},
		{"#+12345", RGB{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseHex(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRGBA(t *testing.T) {
	assert.Equal(t, "rgba(76, 175, 80, 0.35)", RGBA("#4caf50", 0.35))
	assert.Equal(t, "rgba(255, 255, 255, 1)", RGBA("#fff", 1))
	assert.Equal(t, "rgba(148, 163, 184, 0.5)", RGBA("nope", 0.5))
}

func TestReadableText(t *testing.T) {
	assert.Equal(t, "#0f172a", ReadableText("#ffffff"))
	assert.Equal(t, "#0f172a", ReadableText("#fbbf24"))
	assert.Equal(t, "#f8fafc", ReadableText("#2563eb"))
	assert.Equal(t, "#f8fafc", ReadableText("#000"))
	assert.Equal(t, "#e2e8f0", ReadableText("blue"))
}

func TestPaletteIsValid(t *testing.T) {
	assert.Len(t, Palette, 15)
	for _, c := range Palette {
		assert.True(t, validate.IsHexColor(c.Value), c.Name)
	}
}
