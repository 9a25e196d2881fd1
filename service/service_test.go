package service

import (
	"context"
	"testing"

	"whosoever-apparel/catalog"
	"whosoever-apparel/garment"
	"whosoever-apparel/registry"
	"whosoever-apparel/render"
	"whosoever-apparel/repository"
	"whosoever-apparel/snapshot"
	"whosoever-apparel/store"
)

type harness struct {
	svc      *CustomizerService
	carts    *CartService
	sessions *SessionManager
	reg      *registry.Registry
	kv       *store.MemoryStore
	export   string
}

func newHarness(t *testing.T, rasterizer snapshot.Rasterizer) *harness {
	t.Helper()
	reg, err := registry.Load("", nil)
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	composer, err := render.NewComposer(nil)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	if err := composer.Verify(reg); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	html, err := render.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("NewHTMLRenderer: %v", err)
	}
	cat, err := catalog.Load("", nil)
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	cache, err := snapshot.NewVariantCache(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewVariantCache: %v", err)
	}
	if rasterizer == nil {
		rasterizer = snapshot.NewCanvasRasterizer()
	}

	exportDir := t.TempDir()
	kv := store.NewMemoryStore()
	carts := NewCartService(repository.NewMemoryCartRepository(), cache, nil)
	sessions := NewSessionManager(DefaultSessionTTL, nil)
	svc := NewCustomizerService(CustomizerDeps{
		Registry:    reg,
		Composer:    composer,
		HTML:        html,
		Catalog:     cat,
		Preferences: garment.NewPreferences(kv, nil),
		Capturer:    snapshot.NewCapturer(rasterizer, snapshot.NewLocalFileSink(exportDir), nil),
		Carts:       carts,
		Sessions:    sessions,
	}, nil)

	return &harness{svc: svc, carts: carts, sessions: sessions, reg: reg, kv: kv, export: exportDir}
}

// gatedRasterizer blocks inside Rasterize until released, so tests can edit mid-capture
type gatedRasterizer struct {
	inner   snapshot.Rasterizer
	entered chan struct{}
	release chan struct{}
}

func newGatedRasterizer() *gatedRasterizer {
	return &gatedRasterizer{
		inner:   snapshot.NewCanvasRasterizer(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *gatedRasterizer) Name() string { return "gated" }

func (g *gatedRasterizer) Rasterize(ctx context.Context, scene *render.Scene) ([]byte, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.inner.Rasterize(ctx, scene)
}

func strPtr(s string) *string { return &s }

func f64(v float64) *float64 { return &v }
