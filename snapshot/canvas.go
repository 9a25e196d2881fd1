package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"whosoever-apparel/render"
	"whosoever-apparel/utils"
)

// CanvasRasterizer draws scenes in pure Go: oksvg/rasterx for the SVG layers,
// imaging for the rotated overlay and gg for compositing.
type CanvasRasterizer struct{}

func NewCanvasRasterizer() *CanvasRasterizer {
	return &CanvasRasterizer{}
}

func (r *CanvasRasterizer) Name() string { return "canvas" }

func (r *CanvasRasterizer) Rasterize(ctx context.Context, scene *render.Scene) ([]byte, error) {
	if scene.Width <= 0 || scene.Height <= 0 {
		return nil, fmt.Errorf("scene has zero size")
	}

	dc := gg.NewContext(scene.Width, scene.Height)
	bg, err := utils.ParseHex(scene.Background)
	if err != nil {
		bg = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	dc.SetColor(bg)
	dc.Clear()

	if g := scene.Garment; g != nil {
		img, err := rasterizeSVG(g.Markup, g.Width, g.Height)
		if err != nil {
			return nil, fmt.Errorf("garment layer: %w", err)
		}
		if img != nil {
			dc.DrawImage(img, int(math.Round(g.Left)), int(math.Round(g.Top)))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d := scene.Design; d != nil {
		img, err := rasterizeSVG(d.Markup, d.Width, d.Height)
		if err != nil {
			return nil, fmt.Errorf("design layer: %w", err)
		}
		if img != nil {
			var overlay image.Image = img
			if d.Rotation != 0 {
				// imaging rotates counter-clockwise, CSS rotate() is clockwise
				overlay = imaging.Rotate(img, -d.Rotation, color.Transparent)
			}
			cx, cy := d.Center()
			dc.DrawImageAnchored(overlay, int(math.Round(cx)), int(math.Round(cy)), 0.5, 0.5)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// rasterizeSVG draws markup scaled to w x h pixels; layers smaller than a pixel yield nil
func rasterizeSVG(markup string, width, height float64) (*image.RGBA, error) {
	w, h := int(math.Round(width)), int(math.Round(height))
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return rgba, nil
}
