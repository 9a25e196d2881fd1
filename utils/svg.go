package utils

import (
	"fmt"
	"strings"

	"github.com/srwiley/oksvg"
)

// ViewBox returns the width and height of an SVG document's viewBox
func ViewBox(markup string) (float64, float64, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse svg: %w", err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return 0, 0, fmt.Errorf("svg has no usable viewBox")
	}
	return icon.ViewBox.W, icon.ViewBox.H, nil
}
