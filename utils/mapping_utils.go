package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultSize is used when a cart request omits the size
const DefaultSize = "M"

// NormalizeSize maps size names to their codes: "small" -> S, "extra large" -> XL.
// Returns "" when the size is not offered.
func NormalizeSize(size string) string {
	sizeLower := strings.ToLower(strings.TrimSpace(size))
	if sizeLower == "" {
		return DefaultSize
	}

	sizeMap := map[string]string{
		"xs":          "XS",
		"extra small": "XS",
		"s":           "S",
		"small":       "S",
		"m":           "M",
		"medium":      "M",
		"l":           "L",
		"large":       "L",
		"xl":          "XL",
		"extra large": "XL",
	}

	if code, exists := sizeMap[sizeLower]; exists {
		return code
	}
	return ""
}

// MapGarmentToID maps garment names to their identifiers
// Input is normalized to lowercase before mapping; unknown names are returned lowercased
func MapGarmentToID(name string) string {
	nameLower := strings.ToLower(strings.TrimSpace(name))

	garmentMap := map[string]string{
		"hoodie":     "hoodie",
		"hoody":      "hoodie",
		"sweatshirt": "hoodie",
		"tshirt":     "tshirt",
		"t-shirt":    "tshirt",
		"tee":        "tshirt",
		"shirt":      "tshirt",
	}

	if id, exists := garmentMap[nameLower]; exists {
		return id
	}
	return nameLower
}

var labelNoiseRegex = regexp.MustCompile(`(?i)color|stop|gradient`)

// FormatAttributeLabel turns an attribute key into an editor label:
// "curveUnder1Color" -> "Curve Under1", "gradient7Stop2" -> "7 2", "crossfill3" -> "Crossfill3"
func FormatAttributeLabel(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	label := strings.TrimSpace(labelNoiseRegex.ReplaceAllString(b.String(), ""))
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return key
	}
	runes := []rune(label)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
