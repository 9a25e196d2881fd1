package snapshot

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
)

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func jpegSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	return cfg.Width, cfg.Height, format
}

func TestPreviewVariants(t *testing.T) {
	variants, err := PreviewVariants(context.Background(), solidPNG(t, 1000, 600))
	if err != nil {
		t.Fatalf("PreviewVariants: %v", err)
	}
	w, h, format := jpegSize(t, variants[VariantThumb])
	if format != "jpeg" || w != 300 || h != 180 {
		t.Fatalf("thumb: got %s %dx%d", format, w, h)
	}
	w, h, _ = jpegSize(t, variants[VariantMedium])
	if w != 800 || h != 480 {
		t.Fatalf("medium: got %dx%d", w, h)
	}
}

func TestOptimizeImageKeepsSmallImages(t *testing.T) {
	data, err := OptimizeImage(solidPNG(t, 120, 200), VariantMedium)
	if err != nil {
		t.Fatalf("OptimizeImage: %v", err)
	}
	if w, h, _ := jpegSize(t, data); w != 120 || h != 200 {
		t.Fatalf("small image resized: %dx%d", w, h)
	}
	if _, err := OptimizeImage([]byte("not an image"), VariantThumb); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestParseVariant(t *testing.T) {
	if v, _ := ParseVariant(""); v != VariantMedium {
		t.Fatalf("default: got=%s", v)
	}
	if v, _ := ParseVariant("THUMB"); v != VariantThumb {
		t.Fatalf("thumb: got=%s", v)
	}
	if _, err := ParseVariant("large"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestVariantCache(t *testing.T) {
	cache, err := NewVariantCache(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewVariantCache: %v", err)
	}
	if _, ok := cache.Get("cart-1/line-2", VariantThumb); ok {
		t.Fatalf("unexpected hit")
	}
	if err := cache.Put("cart-1/line-2", VariantThumb, []byte("jpeg")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, ok := cache.Get("cart-1/line-2", VariantThumb)
	if !ok || string(data) != "jpeg" {
		t.Fatalf("Get: ok=%v data=%q", ok, data)
	}
	if _, ok := cache.Get("cart-1/line-2", VariantMedium); ok {
		t.Fatalf("variants must not share a cache entry")
	}
}

func TestAnnotate(t *testing.T) {
	src := solidPNG(t, 200, 100)
	out, err := Annotate(src, []string{"Customer: Ana", "", "Device: iPhone"})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() <= 100 {
		t.Fatalf("annotated size: %v", img.Bounds())
	}
	// original pixels are untouched
	if !near(img.At(10, 10), color.NRGBA{R: 200, G: 40, B: 40}, 0) {
		t.Fatalf("source pixel changed: %v", img.At(10, 10))
	}

	same, err := Annotate(src, []string{" ", ""})
	if err != nil || !bytes.Equal(same, src) {
		t.Fatalf("no lines should return the input unchanged")
	}
}
