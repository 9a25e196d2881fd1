package snapshot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"whosoever-apparel/logger"
	"whosoever-apparel/render"
)

const chromeTimeout = 30 * time.Second

// DetectChromePath finds a Chrome/Chromium executable.
// Checks the configured path first, then CHROME_PATH, then common installation paths.
func DetectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ChromeRasterizer loads the preview document in headless Chrome and screenshots the surface element,
// the same DOM the user is looking at
type ChromeRasterizer struct {
	html       *render.HTMLRenderer
	chromePath string
	log        *logger.Logger
}

func NewChromeRasterizer(html *render.HTMLRenderer, chromePath string, log *logger.Logger) *ChromeRasterizer {
	if log == nil {
		log = logger.Nop()
	}
	return &ChromeRasterizer{
		html:       html,
		chromePath: DetectChromePath(chromePath),
		log:        log.With("service", "ChromeRasterizer"),
	}
}

func (r *ChromeRasterizer) Name() string { return "chrome" }

func (r *ChromeRasterizer) Rasterize(ctx context.Context, scene *render.Scene) ([]byte, error) {
	if scene.Width <= 0 || scene.Height <= 0 {
		return nil, fmt.Errorf("scene has zero size")
	}
	doc, err := r.html.Render(scene, render.Selection{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, chromeTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var buf []byte
	var ready bool
	err = chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(int64(scene.Width), int64(scene.Height)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, string(doc)).Do(ctx)
		}),
		chromedp.WaitReady("#surface", chromedp.ByQuery),
		// Wait for fonts before the layout is final
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &ready, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.Screenshot("#surface", &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("chrome returned an empty screenshot")
	}
	r.log.Debug("chrome screenshot", "width", scene.Width, "height", scene.Height, "bytes", len(buf))
	return buf, nil
}
