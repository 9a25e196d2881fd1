package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strconv"
)

//go:embed assets/preview.html
var previewPage string

// HTMLRenderer turns a scene into a standalone HTML document with inline SVG layers.
// The same document is served as the live preview and loaded by the browser rasterizer.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("preview").Parse(previewPage)
	if err != nil {
		return nil, fmt.Errorf("failed to parse preview template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type htmlLayer struct {
	Style  template.CSS
	Markup template.HTML
}

// Render writes the scene. Layer markup comes from the embedded templates filled with
// normalized hex colors, so it is trusted as HTML.
func (r *HTMLRenderer) Render(scene *Scene, sel Selection) ([]byte, error) {
	if scene == nil {
		return nil, fmt.Errorf("no scene to render")
	}

	data := struct {
		Title           string
		SurfaceStyle    template.CSS
		Garment         *htmlLayer
		Design          *htmlLayer
		GarmentSelected bool
		DesignSelected  bool
	}{
		Title: previewTitle(scene),
		SurfaceStyle: template.CSS(fmt.Sprintf("width:%dpx;height:%dpx;background-color:%s",
			scene.Width, scene.Height, scene.Background)),
		GarmentSelected: sel.GarmentSelected,
		DesignSelected:  sel.DesignSelected,
	}
	if scene.Garment != nil {
		data.Garment = &htmlLayer{Style: layerStyle(scene.Garment), Markup: template.HTML(scene.Garment.Markup)}
	}
	if scene.Design != nil {
		data.Design = &htmlLayer{Style: layerStyle(scene.Design), Markup: template.HTML(scene.Design.Markup)}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute preview template: %w", err)
	}
	return buf.Bytes(), nil
}

func layerStyle(l *Layer) template.CSS {
	style := fmt.Sprintf("left:%spx;top:%spx;width:%spx;height:%spx", px(l.Left), px(l.Top), px(l.Width), px(l.Height))
	if l.Rotation != 0 {
		style += fmt.Sprintf(";transform:rotate(%sdeg)", px(l.Rotation))
	}
	return template.CSS(style)
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func previewTitle(scene *Scene) string {
	garment := scene.GarmentID
	if garment == "" {
		garment = "garment"
	}
	design := scene.DesignID
	if design == "" {
		design = "design"
	}
	return garment + " - " + design
}
