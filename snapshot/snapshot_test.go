package snapshot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"whosoever-apparel/models"
	"whosoever-apparel/registry"
	"whosoever-apparel/render"
)

type fixture struct {
	surface *render.Surface
	preview *render.Preview
}

func (f *fixture) handle() Surface {
	return PreviewSurface(f.surface, f.preview)
}

func newFixture(t *testing.T, garmentID, designID string, placement models.PlacementState) *fixture {
	t.Helper()
	reg, err := registry.Load("", nil)
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	composer, err := render.NewComposer(nil)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}

	in := render.Input{Placement: placement}
	if garmentID != "" {
		in.Garment = &models.GarmentSelection{GarmentID: garmentID, BaseColor: "#DD8F3D"}
	}
	if designID != "" {
		def, err := reg.Lookup(designID)
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		in.Design = def
		in.Colors, _ = reg.DefaultsFor(designID)
	}

	f := &fixture{surface: render.NewSurface(), preview: render.NewPreview(composer, nil)}
	f.preview.Attach(f.surface)
	if _, err := f.preview.Update(in); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return f
}

func decodePNG(t *testing.T, p *ImagePayload) image.Image {
	t.Helper()
	data, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	return img
}

func near(c color.Color, want color.NRGBA, tol int) bool {
	got := color.NRGBAModel.Convert(c).(color.NRGBA)
	diff := func(a, b uint8) int {
		d := int(a) - int(b)
		if d < 0 {
			return -d
		}
		return d
	}
	return diff(got.R, want.R) <= tol && diff(got.G, want.G) <= tol && diff(got.B, want.B) <= tol
}

func TestCaptureUnmountedSurface(t *testing.T) {
	f := newFixture(t, "hoodie", "Design 2", models.PlacementState{X: 50, Y: 25, Size: 25})
	c := NewCapturer(NewCanvasRasterizer(), nil, nil)

	_, err := c.Capture(context.Background(), f.handle())
	var ce *CaptureError
	if !errors.As(err, &ce) {
		t.Fatalf("unmounted: expected CaptureError, got=%v", err)
	}

	f.surface.Mount(0, 400)
	if _, err := c.Capture(context.Background(), f.handle()); !errors.As(err, &ce) {
		t.Fatalf("zero width: expected CaptureError, got=%v", err)
	}

	if _, err := c.Capture(context.Background(), nil); !errors.As(err, &ce) {
		t.Fatalf("nil surface: expected CaptureError, got=%v", err)
	}
}

func TestCanvasCaptureIsStable(t *testing.T) {
	f := newFixture(t, "hoodie", "Design 2", models.PlacementState{X: 60, Y: 30, Size: 40, Rotation: 15})
	f.surface.Mount(400, 500)
	c := NewCapturer(NewCanvasRasterizer(), nil, nil)

	first, err := c.Capture(context.Background(), f.handle())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	second, err := c.Capture(context.Background(), f.handle())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if first.Width != 400 || first.Height != 500 {
		t.Fatalf("size: want 400x500 got %dx%d", first.Width, first.Height)
	}

	a, b := decodePNG(t, first), decodePNG(t, second)
	for y := 0; y < 500; y++ {
		for x := 0; x < 400; x++ {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("pixel (%d,%d) differs between captures", x, y)
			}
		}
	}
}

func TestCanvasCaptureContent(t *testing.T) {
	f := newFixture(t, "hoodie", "", models.PlacementState{})
	f.surface.Mount(400, 500)
	c := NewCapturer(NewCanvasRasterizer(), nil, nil)

	payload, err := c.Capture(context.Background(), f.handle())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	img := decodePNG(t, payload)

	if !near(img.At(2, 2), color.NRGBA{R: 0xAB, G: 0x5D, B: 0x0B}, 1) {
		t.Fatalf("background: got=%v", img.At(2, 2))
	}
	// body of the hoodie, clear of any stitching
	if !near(img.At(200, 304), color.NRGBA{R: 0xDD, G: 0x8F, B: 0x3D}, 2) {
		t.Fatalf("garment fill: got=%v", img.At(200, 304))
	}
}

func TestCanvasCaptureDesignOverlay(t *testing.T) {
	f := newFixture(t, "", "Design 6", models.PlacementState{X: 25, Y: 25, Size: 50})
	f.surface.Mount(400, 400)
	c := NewCapturer(NewCanvasRasterizer(), nil, nil)

	payload, err := c.Capture(context.Background(), f.handle())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	img := decodePNG(t, payload)

	// overlay is 200x300 at (100,100); its center sits on the cross
	if !near(img.At(200, 250), color.NRGBA{R: 0x11, G: 0x11, B: 0x11}, 2) {
		t.Fatalf("design center: got=%v", img.At(200, 250))
	}
	// left of the vertical bar, below the arm: background shows through
	if !near(img.At(120, 350), color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF}, 1) {
		t.Fatalf("transparent area: got=%v", img.At(120, 350))
	}

	// rotated a quarter turn, the long bar lies horizontally through the center
	rotated := newFixture(t, "", "Design 6", models.PlacementState{X: 25, Y: 25, Size: 50, Rotation: 90})
	rotated.surface.Mount(400, 400)
	payload, err = c.Capture(context.Background(), rotated.handle())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	img = decodePNG(t, payload)
	if !near(img.At(310, 250), color.NRGBA{R: 0x11, G: 0x11, B: 0x11}, 2) {
		t.Fatalf("rotated bar: got=%v", img.At(310, 250))
	}
	if !near(img.At(200, 370), color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF}, 1) {
		t.Fatalf("rotated: expected background below the bar, got=%v", img.At(200, 370))
	}
}

type failingRasterizer struct{ err error }

func (f failingRasterizer) Name() string { return "failing" }

func (f failingRasterizer) Rasterize(context.Context, *render.Scene) ([]byte, error) {
	return nil, f.err
}

func TestCaptureRasterizerFailure(t *testing.T) {
	f := newFixture(t, "tshirt", "", models.PlacementState{})
	f.surface.Mount(100, 100)

	boom := errors.New("boom")
	_, err := NewCapturer(failingRasterizer{err: boom}, nil, nil).Capture(context.Background(), f.handle())
	var ce *CaptureError
	if !errors.As(err, &ce) || !errors.Is(err, boom) {
		t.Fatalf("expected CaptureError wrapping boom, got=%v", err)
	}

	_, err = NewCapturer(failingRasterizer{err: context.Canceled}, nil, nil).Capture(context.Background(), f.handle())
	if !errors.As(err, &ce) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled CaptureError, got=%v", err)
	}
}

func TestExportAsFile(t *testing.T) {
	f := newFixture(t, "hoodie", "Design 6", models.PlacementState{X: 50, Y: 25, Size: 25})
	f.surface.Mount(200, 250)
	dir := t.TempDir()
	c := NewCapturer(NewCanvasRasterizer(), NewLocalFileSink(dir), nil)

	res, err := c.ExportAsFile(context.Background(), f.handle(), "")
	if err != nil {
		t.Fatalf("ExportAsFile: %v", err)
	}
	if res.Filename != "hoodie-Design 6.png" {
		t.Fatalf("filename: want=hoodie-Design 6.png got=%s", res.Filename)
	}
	data, err := os.ReadFile(filepath.Join(dir, res.Filename))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(data) != res.Bytes {
		t.Fatalf("bytes: want=%d got=%d", res.Bytes, len(data))
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("export is not a PNG: %v", err)
	}

	res, err = c.ExportAsFile(context.Background(), f.handle(), "../../escape")
	if err != nil {
		t.Fatalf("ExportAsFile: %v", err)
	}
	if filepath.Dir(res.Location) != dir {
		t.Fatalf("export escaped the directory: %s", res.Location)
	}

	f.surface.Unmount()
	var ce *CaptureError
	if _, err := c.ExportAsFile(context.Background(), f.handle(), "x.png"); !errors.As(err, &ce) {
		t.Fatalf("unmounted export: expected CaptureError, got=%v", err)
	}
}

func TestDefaultFilename(t *testing.T) {
	if got := DefaultFilename(&render.Scene{GarmentID: "tshirt"}); got != "tshirt-design.png" {
		t.Fatalf("got=%s", got)
	}
	if got := DefaultFilename(nil); got != "garment-design.png" {
		t.Fatalf("got=%s", got)
	}
}

func TestDecodeDataURI(t *testing.T) {
	data, mime, err := DecodeDataURI("data:image/png;base64,aGVsbG8=")
	if err != nil || mime != "image/png" || string(data) != "hello" {
		t.Fatalf("got=%q %q %v", data, mime, err)
	}
	for _, bad := range []string{"http://x/y.png", "data:image/png,hello", "data:image/png;base64,%%%"} {
		if _, _, err := DecodeDataURI(bad); err == nil {
			t.Fatalf("DecodeDataURI(%q): expected error", bad)
		}
	}
}

func TestChromeRasterizer(t *testing.T) {
	if DetectChromePath("") == "" {
		t.Skip("chrome not installed")
	}
	html, err := render.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("NewHTMLRenderer: %v", err)
	}
	f := newFixture(t, "hoodie", "Design 2", models.PlacementState{X: 60, Y: 30, Size: 40, Rotation: 15})
	f.surface.Mount(320, 400)

	c := NewCapturer(NewChromeRasterizer(html, "", nil), nil, nil)
	payload, err := c.Capture(context.Background(), f.handle())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if payload.Width < 320 || payload.Height < 400 {
		t.Fatalf("size: got %dx%d", payload.Width, payload.Height)
	}
}
