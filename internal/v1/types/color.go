package types

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
)

// Color is a hex color normalized to lower-case "#rrggbbaa". The zero
// value is not a valid color; construct one with ParseColor or
// RandomColor so the invariant holds.
type Color string

// Transparent is fully transparent black, the default background of
// new text elements.
const Transparent Color = "#00000000"

// palette holds the colors assigned to users and seeded elements when
// the client does not request one.
var palette = [...]string{
	"#ef4444", "#f97316", "#eab308",
	"#84cc16", "#10b981", "#06b6d4",
	"#6366f1", "#a855f7", "#e879f9",
}

// RandomColor picks a palette color.
func RandomColor() Color {
	c, _ := ParseColor(palette[rand.Intn(len(palette))])
	return c
}

// ParseColor normalizes a hex color string. The leading '#' is
// optional. Three and four digit shorthands double each digit, six and
// eight digit forms pass through, and a missing alpha channel defaults
// to opaque. Parsing an already normalized color returns it unchanged.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")

	var out []byte
	switch len(hex) {
	case 3, 4:
		out = make([]byte, 0, 8)
		for i := 0; i < len(hex); i++ {
			out = append(out, hex[i], hex[i])
		}
		if len(hex) == 3 {
			out = append(out, 'f', 'f')
		}
	case 6, 8:
		out = append(make([]byte, 0, 8), hex...)
		if len(hex) == 6 {
			out = append(out, 'f', 'f')
		}
	default:
		return "", fmt.Errorf("color %q: expected 3, 4, 6, or 8 hex digits, got %d", s, len(hex))
	}

	for i, b := range out {
		switch {
		case b >= '0' && b <= '9':
		case b >= 'a' && b <= 'f':
		case b >= 'A' && b <= 'F':
			out[i] = b + ('a' - 'A')
		default:
			return "", fmt.Errorf("color %q: invalid hex digit %q", s, b)
		}
	}

	return Color("#" + string(out)), nil
}

// String returns the normalized "#rrggbbaa" form.
func (c Color) String() string { return string(c) }

// UnmarshalJSON parses and normalizes the incoming color, rejecting
// anything that is not a valid hex color.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
