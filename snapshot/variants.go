package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"whosoever-apparel/logger"
)

// Variant is a JPEG rendition of a snapshot for admin screens
type Variant string

const (
	VariantThumb  Variant = "thumb"
	VariantMedium Variant = "medium"
)

const (
	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// ParseVariant accepts "thumb" or "medium"; empty means medium
func ParseVariant(raw string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(raw))); v {
	case VariantThumb, VariantMedium:
		return v, nil
	case "":
		return VariantMedium, nil
	default:
		return "", fmt.Errorf("unknown size %q (use thumb or medium)", raw)
	}
}

// OptimizeImage converts a snapshot to JPEG, shrinking it so neither side exceeds the variant's max dimension.
// Transparent areas are flattened onto white.
func OptimizeImage(imageData []byte, v Variant) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	maxDim, quality := maxSizeMedium, qualityMedium
	if v == VariantThumb {
		maxDim, quality = maxSizeThumb, qualityThumb
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var resized image.Image = img
	if width > maxDim || height > maxDim {
		if width > height {
			resized = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
		} else {
			resized = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
		}
	}
	flat := imaging.New(resized.Bounds().Dx(), resized.Bounds().Dy(), image.White)
	flat = imaging.Overlay(flat, resized, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// PreviewVariants renders the thumb and medium variants concurrently
func PreviewVariants(ctx context.Context, imageData []byte) (map[Variant][]byte, error) {
	variants := []Variant{VariantThumb, VariantMedium}
	out := make([][]byte, len(variants))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		i, v := i, v
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := OptimizeImage(imageData, v)
			if err != nil {
				return fmt.Errorf("%s variant: %w", v, err)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[Variant][]byte, len(variants))
	for i, v := range variants {
		result[v] = out[i]
	}
	return result, nil
}

// VariantCache keeps rendered variants on disk, keyed by cart line
type VariantCache struct {
	dir string
	log *logger.Logger
}

func NewVariantCache(dir string, log *logger.Logger) (*VariantCache, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &VariantCache{dir: dir, log: log.With("service", "VariantCache")}, nil
}

// Path returns the cache file for a key and variant
func (c *VariantCache) Path(key string, v Variant) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.jpg", sanitizeFilename(key), v))
}

// Get returns the cached bytes, ok=false on a miss
func (c *VariantCache) Get(key string, v Variant) ([]byte, bool) {
	data, err := os.ReadFile(c.Path(key, v))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *VariantCache) Put(key string, v Variant, data []byte) error {
	path := c.Path(key, v)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	c.log.Debug("✓ Image cached", "path", path)
	return nil
}
