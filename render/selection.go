package render

import (
	"fmt"
	"strings"
)

// Target is what a pointer press landed on
type Target string

const (
	TargetGarment Target = "garment"
	TargetDesign  Target = "design"
	TargetOutside Target = "outside"
)

// ParseTarget accepts "garment", "design" or "outside"
func ParseTarget(raw string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(raw))); t {
	case TargetGarment, TargetDesign, TargetOutside:
		return t, nil
	default:
		return "", fmt.Errorf("unknown click target %q", raw)
	}
}

// Classify maps a surface point to a target. The design overlay is on top, so it wins over the garment.
func Classify(scene *Scene, x, y float64) Target {
	if scene == nil {
		return TargetOutside
	}
	if scene.Design != nil && scene.Design.Contains(x, y) {
		return TargetDesign
	}
	if g := scene.Garment; g != nil && x >= g.Left && x <= g.Left+g.Width && y >= g.Top && y <= g.Top+g.Height {
		return TargetGarment
	}
	return TargetOutside
}

// Selection is the click-to-select scope of a preview.
// GarmentSelected flags the garment for base-color editing, DesignSelected flags the design for
// placement/color editing. Active is the edit target the last selecting click chose.
type Selection struct {
	GarmentSelected bool
	DesignSelected  bool
	Active          Target
}

// Click applies one pointer press. Any press outside the design overlay clears DesignSelected;
// that is the only way the design gets deselected.
func (s *Selection) Click(t Target) {
	switch t {
	case TargetDesign:
		s.DesignSelected = true
		s.Active = TargetDesign
	case TargetGarment:
		s.GarmentSelected = !s.GarmentSelected
		s.DesignSelected = false
		if s.GarmentSelected {
			s.Active = TargetGarment
		} else {
			s.Active = ""
		}
	default:
		s.DesignSelected = false
		if s.Active == TargetDesign {
			s.Active = ""
			if s.GarmentSelected {
				s.Active = TargetGarment
			}
		}
	}
}

// ClearDesign drops the design flag, e.g. when the design itself is removed
func (s *Selection) ClearDesign() {
	s.DesignSelected = false
	if s.Active == TargetDesign {
		s.Active = ""
	}
}

func (s *Selection) Reset() {
	*s = Selection{}
}
