package garment

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"whosoever-apparel/models"
	"whosoever-apparel/utils"
)

//go:embed outlines/*.svg.tmpl
var outlineFS embed.FS

const (
	Hoodie = "hoodie"
	Tshirt = "tshirt"

	// DefaultBaseColor is the garment fill before the user picks one
	DefaultBaseColor = "#DD8F3D"
)

// Outline is a garment silhouette whose fill follows the base color
type Outline struct {
	ID            string
	Name          string
	ViewBoxWidth  float64
	ViewBoxHeight float64
	markup        *template.Template
}

// Render returns the outline SVG filled with baseColor
func (o *Outline) Render(baseColor string) (string, error) {
	hex, err := utils.NormalizeHex(baseColor)
	if err != nil {
		return "", fmt.Errorf("garment %s: %w", o.ID, err)
	}
	var buf bytes.Buffer
	if err := o.markup.Execute(&buf, map[string]string{"baseColor": hex}); err != nil {
		return "", fmt.Errorf("failed to render %s outline: %w", o.ID, err)
	}
	return buf.String(), nil
}

// AspectRatio is height/width of the outline viewBox
func (o *Outline) AspectRatio() float64 {
	return o.ViewBoxHeight / o.ViewBoxWidth
}

var outlines = mustLoadOutlines(map[string]string{
	Hoodie: "Hoodie",
	Tshirt: "T-Shirt",
})

func mustLoadOutlines(names map[string]string) map[string]*Outline {
	loaded := make(map[string]*Outline, len(names))
	for id, name := range names {
		raw, err := outlineFS.ReadFile("outlines/" + id + ".svg.tmpl")
		if err != nil {
			panic(fmt.Sprintf("garment outline %s: %v", id, err))
		}
		tmpl := template.Must(template.New(id).Option("missingkey=error").Parse(string(raw)))

		var probe bytes.Buffer
		if err := tmpl.Execute(&probe, map[string]string{"baseColor": utils.NeutralColor}); err != nil {
			panic(fmt.Sprintf("garment outline %s: %v", id, err))
		}
		w, h, err := utils.ViewBox(probe.String())
		if err != nil {
			panic(fmt.Sprintf("garment outline %s: %v", id, err))
		}
		loaded[id] = &Outline{ID: id, Name: name, ViewBoxWidth: w, ViewBoxHeight: h, markup: tmpl}
	}
	return loaded
}

// OutlineFor resolves a garment id. Unknown ids report ok=false and render no outline.
func OutlineFor(garmentID string) (*Outline, bool) {
	o, ok := outlines[strings.ToLower(strings.TrimSpace(garmentID))]
	return o, ok
}

// IDs lists the known garments sorted by id
func IDs() []string {
	ids := make([]string, 0, len(outlines))
	for id := range outlines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewSelection builds a garment selection. An empty base color takes the default; an invalid one is an error.
// Common names ("T-Shirt", "tee", "Sweatshirt") resolve to their outline id.
// Unknown garment ids are accepted and simply render nothing.
func NewSelection(garmentID, baseColor string) (models.GarmentSelection, error) {
	id := strings.TrimSpace(garmentID)
	if id == "" {
		return models.GarmentSelection{}, fmt.Errorf("garmentId is required")
	}
	if mapped := utils.MapGarmentToID(id); mapped != "" {
		if _, ok := OutlineFor(mapped); ok {
			id = mapped
		}
	}
	if strings.TrimSpace(baseColor) == "" {
		baseColor = DefaultBaseColor
	}
	hex, err := utils.NormalizeHex(baseColor)
	if err != nil {
		return models.GarmentSelection{}, fmt.Errorf("baseColor: %w", err)
	}
	return models.GarmentSelection{GarmentID: id, BaseColor: hex}, nil
}
