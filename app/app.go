package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"whosoever-apparel/app/controller"
	"whosoever-apparel/app/router"
	"whosoever-apparel/catalog"
	"whosoever-apparel/config"
	"whosoever-apparel/customizer"
	"whosoever-apparel/db"
	"whosoever-apparel/garment"
	"whosoever-apparel/logger"
	"whosoever-apparel/registry"
	"whosoever-apparel/render"
	"whosoever-apparel/repository"
	"whosoever-apparel/service"
	"whosoever-apparel/snapshot"
	"whosoever-apparel/store"
)

// App is the wired application
type App struct {
	Handler  http.Handler
	Sessions *service.SessionManager

	log     *logger.Logger
	closers []func() error
}

// Close releases sessions and backend connections, newest first
func (a *App) Close() {
	if a.Sessions != nil {
		a.Sessions.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("⚠️  Error while closing backend", "error", err)
		}
	}
	a.closers = nil
}

// Initialize initializes the application. Optional backends fall back to in-process
// implementations when they are not configured. Backends opened before a failing
// step are closed again.
func Initialize(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *App, err error) {
	a := &App{log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// Design registry and artwork must agree before anything is served
	reg, err := registry.Load(cfg.DesignRegistryPath, log)
	if err != nil {
		return nil, err
	}
	composer, err := render.NewComposer(log)
	if err != nil {
		return nil, err
	}
	if err := composer.Verify(reg); err != nil {
		return nil, fmt.Errorf("design registry does not match artwork: %w", err)
	}
	html, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}

	products, err := catalog.Load(cfg.CatalogConfigPath, log)
	if err != nil {
		return nil, err
	}

	// Garment preference store
	var kv store.KeyValueStore
	if cfg.RedisAddr != "" {
		redisStore, err := store.NewRedisStore(cfg.RedisAddr, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, redisStore.Close)
		kv = redisStore
	} else {
		log.Warn("⚠️  REDIS_ADDR not set, garment preference kept in memory")
		kv = store.NewMemoryStore()
	}

	// Cart persistence
	var carts repository.CartRepositoryInterface
	if cfg.DatabaseURL != "" {
		if err := db.InitDB(cfg.DatabaseURL, log); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, db.CloseDB)
		cartRepo := repository.NewCartRepository(log)
		if err := cartRepo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		carts = cartRepo
	} else {
		log.Warn("⚠️  No database configured, carts kept in memory")
		carts = repository.NewMemoryCartRepository()
	}

	// Export destination
	var sink snapshot.FileSink
	if cfg.ExportDriveFolderID != "" && cfg.GoogleCredentialPath != "" {
		driveSink, err := snapshot.NewDriveFileSink(ctx, cfg.GoogleCredentialPath, cfg.ExportDriveFolderID, log)
		if err != nil {
			return nil, err
		}
		sink = driveSink
	} else {
		sink = snapshot.NewLocalFileSink(cfg.ExportDir)
	}

	// Rasterizer
	var rasterizer snapshot.Rasterizer
	switch cfg.Rasterizer {
	case "chrome":
		chromePath := snapshot.DetectChromePath(cfg.ChromePath)
		if chromePath == "" {
			return nil, fmt.Errorf("SNAPSHOT_RASTERIZER=chrome but no Chrome/Chromium binary was found")
		}
		rasterizer = snapshot.NewChromeRasterizer(html, chromePath, log)
	default:
		rasterizer = snapshot.NewCanvasRasterizer()
	}
	log.Info("🖼️  Snapshot rasterizer ready", "rasterizer", rasterizer.Name())

	cache, err := snapshot.NewVariantCache(filepath.Join(cfg.ExportDir, ".cache"), log)
	if err != nil {
		return nil, err
	}

	// Services
	cartService := service.NewCartService(carts, cache, log)
	a.Sessions = service.NewSessionManager(cfg.SessionTTL, log)
	reapCtx, stopReaper := context.WithCancel(context.Background())
	a.Sessions.Start(reapCtx)
	a.closers = append(a.closers, func() error {
		stopReaper()
		return nil
	})
	customizerService := service.NewCustomizerService(service.CustomizerDeps{
		Registry:    reg,
		Composer:    composer,
		HTML:        html,
		Catalog:     products,
		Preferences: garment.NewPreferences(kv, log),
		Capturer:    snapshot.NewCapturer(rasterizer, sink, log),
		Carts:       cartService,
		Sessions:    a.Sessions,
		Options: service.SessionOptions{
			Bounds:    customizer.PlacementBounds{SizeMin: cfg.SizeMin, SizeMax: cfg.SizeMax},
			NudgeStep: cfg.NudgeStep,
		},
	}, log)

	// Create controllers
	controllers := &router.Controllers{
		Design:  controller.NewDesignController(customizerService, log),
		Session: controller.NewSessionController(customizerService, log),
		Cart:    controller.NewCartController(cartService, log),
	}

	// Setup routes using standard http router
	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)
	a.Handler = mux

	return a, nil
}

// NewServer builds the HTTP server for the given address
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
