package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"whosoever-apparel/logger"
	"whosoever-apparel/models"
	"whosoever-apparel/render"
)

// Surface is the mounted drawing area being captured
type Surface interface {
	Mounted() bool
	Size() (width, height int)
	Scene() (*render.Scene, error)
}

// Rasterizer turns a composed scene into PNG bytes
type Rasterizer interface {
	Name() string
	Rasterize(ctx context.Context, scene *render.Scene) ([]byte, error)
}

// FileSink stores an exported snapshot and returns where it ended up
type FileSink interface {
	Save(ctx context.Context, filename string, data []byte) (location string, err error)
}

type previewSurface struct {
	surface *render.Surface
	preview *render.Preview
}

// PreviewSurface adapts a mounted surface and the preview attached to it
func PreviewSurface(surface *render.Surface, preview *render.Preview) Surface {
	return &previewSurface{surface: surface, preview: preview}
}

func (p *previewSurface) Mounted() bool { return p.surface.Mounted() }

func (p *previewSurface) Size() (int, int) { return p.surface.Size() }

func (p *previewSurface) Scene() (*render.Scene, error) { return p.preview.Scene() }

// Capturer freezes surfaces into image payloads
type Capturer struct {
	rasterizer Rasterizer
	sink       FileSink
	log        *logger.Logger
	now        func() time.Time
}

func NewCapturer(rasterizer Rasterizer, sink FileSink, log *logger.Logger) *Capturer {
	if log == nil {
		log = logger.Nop()
	}
	return &Capturer{
		rasterizer: rasterizer,
		sink:       sink,
		log:        log.With("service", "Capturer"),
		now:        time.Now,
	}
}

// Capture rasterizes the surface as it is now. Unmounted or zero-size surfaces fail
// with *CaptureError, as does any rasterizer failure.
func (c *Capturer) Capture(ctx context.Context, surface Surface) (*ImagePayload, error) {
	if surface == nil || !surface.Mounted() {
		return nil, &CaptureError{Reason: "surface is not mounted"}
	}
	w, h := surface.Size()
	if w <= 0 || h <= 0 {
		return nil, &CaptureError{Reason: fmt.Sprintf("surface has zero size (%dx%d)", w, h)}
	}
	scene, err := surface.Scene()
	if err != nil {
		return nil, &CaptureError{Reason: "preview is not composed", Err: err}
	}
	if scene == nil {
		return nil, &CaptureError{Reason: "preview is not composed"}
	}

	start := c.now()
	data, err := c.rasterizer.Rasterize(ctx, scene)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, &CaptureError{Reason: "capture cancelled", Err: err}
		}
		c.log.Error("❌ Rasterizer failed", "rasterizer", c.rasterizer.Name(), "error", err)
		return nil, &CaptureError{Reason: c.rasterizer.Name() + " rasterizer failed", Err: err}
	}

	payload, err := NewPNGPayload(data, c.now())
	if err != nil {
		return nil, &CaptureError{Reason: "rasterizer returned an unreadable image", Err: err}
	}
	c.log.Info("📸 Snapshot captured",
		"rasterizer", c.rasterizer.Name(),
		"width", payload.Width,
		"height", payload.Height,
		"bytes", len(data),
		"took", c.now().Sub(start).String())
	return payload, nil
}

// ExportAsFile captures the surface and saves it through the file sink.
// An empty filename becomes "<garment>-<design>.png".
func (c *Capturer) ExportAsFile(ctx context.Context, surface Surface, filename string) (*models.ExportResponse, error) {
	if c.sink == nil {
		return nil, fmt.Errorf("no export destination configured")
	}
	payload, err := c.Capture(ctx, surface)
	if err != nil {
		return nil, err
	}
	data, err := payload.Bytes()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(filename) == "" {
		scene, _ := surface.Scene()
		filename = DefaultFilename(scene)
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".png") {
		filename += ".png"
	}

	location, err := c.sink.Save(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	c.log.Info("💾 Snapshot exported", "filename", filename, "location", location)
	return &models.ExportResponse{Filename: filename, Location: location, Bytes: len(data)}, nil
}

// DefaultFilename names an export after its garment and design
func DefaultFilename(scene *render.Scene) string {
	garment, design := "garment", "design"
	if scene != nil {
		if scene.GarmentID != "" {
			garment = scene.GarmentID
		}
		if scene.DesignID != "" {
			design = scene.DesignID
		}
	}
	return garment + "-" + design + ".png"
}
