package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	annotationFontSize = 14
	annotationPadding  = 8
)

var (
	fontOnce sync.Once
	fontFace font.Face
	fontErr  error
)

func annotationFace() (font.Face, error) {
	fontOnce.Do(func() {
		parsed, err := truetype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("failed to parse TTF: %w", err)
			return
		}
		fontFace = truetype.NewFace(parsed, &truetype.Options{
			Size:    annotationFontSize,
			DPI:     72,
			Hinting: font.HintingNone,
		})
	})
	return fontFace, fontErr
}

// Annotate draws label lines in a band under the snapshot, for fulfillment previews.
// Empty lines are skipped; with nothing to draw the input is returned unchanged.
func Annotate(imageData []byte, lines []string) ([]byte, error) {
	var text []string
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			text = append(text, s)
		}
	}
	if len(text) == 0 {
		return imageData, nil
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	face, err := annotationFace()
	if err != nil {
		return nil, err
	}

	lineHeight := float64(annotationFontSize) * 1.4
	band := int(lineHeight*float64(len(text))) + 2*annotationPadding
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	dc := gg.NewContext(w, h+band)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(img, 0, 0)

	dc.SetColor(color.NRGBA{R: 0x1F, G: 0x1F, B: 0x1F, A: 0xFF})
	dc.DrawRectangle(0, float64(h), float64(w), float64(band))
	dc.Fill()

	dc.SetFontFace(face)
	dc.SetColor(color.White)
	for i, line := range text {
		y := float64(h+annotationPadding) + lineHeight*float64(i)
		dc.DrawStringAnchored(line, annotationPadding, y, 0, 1)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
