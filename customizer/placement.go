package customizer

import (
	"fmt"
	"math"
	"strings"

	"whosoever-apparel/models"
)

// Direction is an axis-aligned nudge direction
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection accepts "up", "down", "left", "right" in any case
func ParseDirection(raw string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(raw))); d {
	case Up, Down, Left, Right:
		return d, nil
	default:
		return "", fmt.Errorf("unknown direction %q", raw)
	}
}

const (
	minRotation = -180.0
	maxRotation = 180.0
)

// DefaultPlacement is where a freshly selected design lands
var DefaultPlacement = models.PlacementState{X: 50, Y: 25, Size: 25, Rotation: 0}

// PlacementBounds configures the allowed design size range (percent of canvas width)
type PlacementBounds struct {
	SizeMin float64
	SizeMax float64
}

// DefaultBounds matches the size slider range of the editor
var DefaultBounds = PlacementBounds{SizeMin: 10, SizeMax: 100}

// Placement holds the normalized placement of the design. Pixel coordinates are always derived.
type Placement struct {
	state  models.PlacementState
	bounds PlacementBounds
}

// NewPlacement returns a placement at DefaultPlacement with the given bounds
func NewPlacement(bounds PlacementBounds) *Placement {
	if bounds.SizeMin <= 0 || bounds.SizeMax <= 0 || bounds.SizeMin > bounds.SizeMax {
		bounds = DefaultBounds
	}
	p := &Placement{bounds: bounds}
	p.Restore(DefaultPlacement)
	return p
}

// State returns the current placement
func (p *Placement) State() models.PlacementState {
	return p.state
}

// Bounds returns the configured size range
func (p *Placement) Bounds() PlacementBounds {
	return p.bounds
}

// SetPosition moves the design, clamping each axis to [0,100]
func (p *Placement) SetPosition(x, y float64) {
	p.state.X = clampKeep(x, 0, 100, p.state.X)
	p.state.Y = clampKeep(y, 0, 100, p.state.Y)
}

// Nudge moves the design step percent in one direction, then clamps.
// Nudging against a boundary leaves that axis where it is.
func (p *Placement) Nudge(dir Direction, step float64) {
	if math.IsNaN(step) || math.IsInf(step, 0) {
		return
	}
	x, y := p.state.X, p.state.Y
	switch dir {
	case Up:
		y -= step
	case Down:
		y += step
	case Left:
		x -= step
	case Right:
		x += step
	default:
		return
	}
	p.SetPosition(x, y)
}

// SetSize sets the design width percent, clamped to the configured bounds
func (p *Placement) SetSize(percent float64) {
	p.state.Size = clampKeep(percent, p.bounds.SizeMin, p.bounds.SizeMax, p.state.Size)
}

// SetRotation sets the rotation in degrees, clamped to [-180,180]
func (p *Placement) SetRotation(degrees float64) {
	p.state.Rotation = clampKeep(degrees, minRotation, maxRotation, p.state.Rotation)
}

// Restore applies a saved placement through the same clamps as the mutators
func (p *Placement) Restore(state models.PlacementState) {
	p.SetPosition(state.X, state.Y)
	p.SetSize(state.Size)
	p.SetRotation(state.Rotation)
}

// DragTo moves the design to a pointer position given in surface pixels
func (p *Placement) DragTo(pointX, pointY float64, surfaceW, surfaceH int) {
	if surfaceW <= 0 || surfaceH <= 0 {
		return
	}
	p.SetPosition(pointX/float64(surfaceW)*100, pointY/float64(surfaceH)*100)
}

// ToPixelRect resolves the placement against a canvas of width x height pixels
func (p *Placement) ToPixelRect(width, height float64) models.PixelRect {
	return ToPixelRect(p.state, width, height)
}

// ToPixelRect resolves any placement state against a canvas
func ToPixelRect(state models.PlacementState, width, height float64) models.PixelRect {
	return models.PixelRect{
		Left:  state.X / 100 * width,
		Top:   state.Y / 100 * height,
		Width: state.Size / 100 * width,
	}
}

// clampKeep clamps v to [lo,hi]; NaN keeps the previous value
func clampKeep(v, lo, hi, prev float64) float64 {
	if math.IsNaN(v) {
		return prev
	}
	return math.Min(math.Max(v, lo), hi)
}
