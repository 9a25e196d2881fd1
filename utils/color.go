package utils

import (
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

// NeutralColor is used for attribute keys that have no declared default
const NeutralColor = "#CCCCCC"

var hexColorRegex = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeHex validates a hex color ("#abc", "abc", "#AABBCC") and returns it as "#RRGGBB"
func NormalizeHex(value string) (string, error) {
	v := strings.TrimSpace(value)
	if !hexColorRegex.MatchString(v) {
		return "", fmt.Errorf("invalid hex color %q", value)
	}
	v = strings.TrimPrefix(v, "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	return "#" + strings.ToUpper(v), nil
}

// IsHexColor reports whether value parses as a hex color
func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(strings.TrimSpace(value))
}

// ParseHex converts a hex color to an opaque NRGBA
func ParseHex(value string) (color.NRGBA, error) {
	hex, err := NormalizeHex(value)
	if err != nil {
		return color.NRGBA{}, err
	}
	n, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", value, err)
	}
	return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// ToHex formats an NRGBA as "#RRGGBB" (alpha dropped)
func ToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// DynamicBackground returns the surface background for a garment color:
// dark garments get a lighter backdrop and light garments a darker one (+/-50 per channel).
// Empty or invalid input yields white.
func DynamicBackground(garmentHex string) string {
	c, err := ParseHex(garmentHex)
	if err != nil {
		return "#FFFFFF"
	}

	brightness := (float64(c.R)*299 + float64(c.G)*587 + float64(c.B)*114) / 1000
	amount := -50
	if brightness < 128 {
		amount = 50
	}

	shift := func(v uint8) uint8 {
		n := int(v) + amount
		if n < 0 {
			return 0
		}
		if n > 255 {
			return 255
		}
		return uint8(n)
	}

	return ToHex(color.NRGBA{R: shift(c.R), G: shift(c.G), B: shift(c.B), A: 0xff})
}
