package render

import (
	"fmt"
	"math"
	"sort"

	"whosoever-apparel/customizer"
	"whosoever-apparel/garment"
	"whosoever-apparel/logger"
	"whosoever-apparel/models"
	"whosoever-apparel/registry"
	"whosoever-apparel/utils"
)

// garmentMargin is the fraction of the surface left empty around the outline
const garmentMargin = 0.05

// Input is everything the composition depends on besides the surface size
type Input struct {
	Garment   *models.GarmentSelection
	Design    *models.DesignDefinition // nil when no design is chosen
	Colors    map[string]string
	Placement models.PlacementState
}

// Layer is one positioned SVG in surface pixels. Rotation is clockwise degrees about the layer center.
type Layer struct {
	Markup   string
	Left     float64
	Top      float64
	Width    float64
	Height   float64
	Rotation float64
}

// Center returns the layer center in surface pixels
func (l *Layer) Center() (float64, float64) {
	return l.Left + l.Width/2, l.Top + l.Height/2
}

// Contains is a rotation-aware hit test
func (l *Layer) Contains(x, y float64) bool {
	cx, cy := l.Center()
	dx, dy := x-cx, y-cy
	theta := l.Rotation * math.Pi / 180
	sin, cos := math.Sincos(theta)
	u := dx*cos + dy*sin
	v := -dx*sin + dy*cos
	return math.Abs(u) <= l.Width/2 && math.Abs(v) <= l.Height/2
}

// Scene is the composed preview: background, garment outline, then design overlay on top
type Scene struct {
	Width      int
	Height     int
	Background string
	GarmentID  string
	DesignID   string
	Garment    *Layer // nil for an unknown or missing garment
	Design     *Layer // nil when no design is chosen
}

// Composer turns session state into scenes
type Composer struct {
	artwork map[string]*artwork
	log     *logger.Logger
}

// NewComposer loads the embedded design artwork
func NewComposer(log *logger.Logger) (*Composer, error) {
	if log == nil {
		log = logger.Nop()
	}
	art, err := loadArtwork()
	if err != nil {
		return nil, fmt.Errorf("failed to load design artwork: %w", err)
	}
	return &Composer{artwork: art, log: log.With("service", "Composer")}, nil
}

// Verify checks that every registered design has artwork whose template fields are exactly its declared keys
func (c *Composer) Verify(reg *registry.Registry) error {
	for _, id := range reg.IDs() {
		def, err := reg.Lookup(id)
		if err != nil {
			return err
		}
		art, ok := c.artwork[def.Artwork]
		if !ok {
			return fmt.Errorf("design %q: artwork %q not found", id, def.Artwork)
		}
		declared := make(map[string]bool)
		for _, key := range def.Keys() {
			declared[key] = true
		}
		for _, field := range art.fields {
			if !declared[field] {
				return fmt.Errorf("design %q: artwork uses undeclared key %q", id, field)
			}
			delete(declared, field)
		}
		if len(declared) > 0 {
			unused := make([]string, 0, len(declared))
			for key := range declared {
				unused = append(unused, key)
			}
			sort.Strings(unused)
			return fmt.Errorf("design %q: keys %v are not used by artwork %q", id, unused, def.Artwork)
		}
	}
	return nil
}

// Compose lays the input out on a width x height surface. Pixel geometry is derived from
// percentages on every call, so repeated resizes never accumulate drift.
func (c *Composer) Compose(in Input, width, height int) (*Scene, error) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	scene := &Scene{Width: width, Height: height, Background: "#FFFFFF"}

	if in.Garment != nil {
		scene.GarmentID = in.Garment.GarmentID
		scene.Background = utils.DynamicBackground(in.Garment.BaseColor)

		outline, ok := garment.OutlineFor(in.Garment.GarmentID)
		if !ok {
			c.log.Warn("⚠️  Unknown garment, rendering without outline", "garmentId", in.Garment.GarmentID)
		} else {
			markup, err := outline.Render(in.Garment.BaseColor)
			if err != nil {
				return nil, err
			}
			scene.Garment = containLayer(markup, outline.ViewBoxWidth, outline.ViewBoxHeight, width, height)
		}
	}

	if in.Design != nil {
		art, ok := c.artwork[in.Design.Artwork]
		if !ok {
			return nil, fmt.Errorf("design %q: artwork %q not found", in.Design.ID, in.Design.Artwork)
		}
		markup, err := art.render(in.Colors)
		if err != nil {
			return nil, err
		}
		rect := customizer.ToPixelRect(in.Placement, float64(width), float64(height))
		scene.DesignID = in.Design.ID
		scene.Design = &Layer{
			Markup:   markup,
			Left:     rect.Left,
			Top:      rect.Top,
			Width:    rect.Width,
			Height:   rect.Width * art.aspect(),
			Rotation: in.Placement.Rotation,
		}
	}

	return scene, nil
}

// AspectRatio returns height/width of a design's artwork
func (c *Composer) AspectRatio(def *models.DesignDefinition) (float64, bool) {
	art, ok := c.artwork[def.Artwork]
	if !ok {
		return 0, false
	}
	return art.aspect(), true
}

// containLayer fits a viewBox into the surface, centered, keeping its aspect ratio
func containLayer(markup string, vbW, vbH float64, width, height int) *Layer {
	availW := float64(width) * (1 - 2*garmentMargin)
	availH := float64(height) * (1 - 2*garmentMargin)
	scale := math.Min(availW/vbW, availH/vbH)
	if scale < 0 || math.IsNaN(scale) {
		scale = 0
	}
	w, h := vbW*scale, vbH*scale
	return &Layer{
		Markup: markup,
		Left:   (float64(width) - w) / 2,
		Top:    (float64(height) - h) / 2,
		Width:  w,
		Height: h,
	}
}
