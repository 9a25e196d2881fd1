package service

import (
	"context"
	"strings"

	"whosoever-apparel/catalog"
	"whosoever-apparel/customizer"
	"whosoever-apparel/garment"
	"whosoever-apparel/logger"
	"whosoever-apparel/models"
	"whosoever-apparel/registry"
	"whosoever-apparel/render"
	"whosoever-apparel/snapshot"
	"whosoever-apparel/utils"
)

// CustomizerService drives editing sessions and hands finished customizations to the cart
// Implements CustomizerServiceInterface
type CustomizerService struct {
	registry *registry.Registry
	composer *render.Composer
	html     *render.HTMLRenderer
	catalog  *catalog.Catalog
	prefs    *garment.Preferences
	capturer *snapshot.Capturer
	carts    CartServiceInterface
	sessions *SessionManager
	opts     SessionOptions
	log      *logger.Logger
}

// CustomizerDeps groups the collaborators of CustomizerService
type CustomizerDeps struct {
	Registry    *registry.Registry
	Composer    *render.Composer
	HTML        *render.HTMLRenderer
	Catalog     *catalog.Catalog
	Preferences *garment.Preferences
	Capturer    *snapshot.Capturer
	Carts       CartServiceInterface
	Sessions    *SessionManager
	Options     SessionOptions
}

// NewCustomizerService creates a new CustomizerService
func NewCustomizerService(deps CustomizerDeps, log *logger.Logger) *CustomizerService {
	if log == nil {
		log = logger.Nop()
	}
	if deps.Sessions == nil {
		deps.Sessions = NewSessionManager(DefaultSessionTTL, log)
	}
	return &CustomizerService{
		registry: deps.Registry,
		composer: deps.Composer,
		html:     deps.HTML,
		catalog:  deps.Catalog,
		prefs:    deps.Preferences,
		capturer: deps.Capturer,
		carts:    deps.Carts,
		sessions: deps.Sessions,
		opts:     deps.Options,
		log:      log.With("service", "CustomizerService"),
	}
}

// Ensure CustomizerService implements CustomizerServiceInterface
var _ CustomizerServiceInterface = (*CustomizerService)(nil)

// ListDesigns lists the registry in declaration order
func (s *CustomizerService) ListDesigns() []models.DesignSummary {
	return s.registry.Summaries()
}

// GetDesign returns a design with its groups and the full default color mapping
func (s *CustomizerService) GetDesign(designID string) (*models.DesignDetail, error) {
	def, err := s.registry.Lookup(designID)
	if err != nil {
		return nil, err
	}
	groups, err := s.registry.ListGroups(designID)
	if err != nil {
		return nil, err
	}
	defaults, err := s.registry.DefaultsFor(designID)
	if err != nil {
		return nil, err
	}
	aspect, _ := s.composer.AspectRatio(def)
	return &models.DesignDetail{
		ID:          def.ID,
		Name:        def.Name,
		Groups:      groups,
		Defaults:    defaults,
		AspectRatio: aspect,
	}, nil
}

// ListGarments lists the garment outlines, tagged with their catalog product when there is one
func (s *CustomizerService) ListGarments() []models.GarmentSummary {
	ids := garment.IDs()
	garments := make([]models.GarmentSummary, 0, len(ids))
	for _, id := range ids {
		outline, _ := garment.OutlineFor(id)
		summary := models.GarmentSummary{ID: id, Name: outline.Name}
		if s.catalog != nil {
			if p, ok := s.catalog.ProductFor(id); ok {
				summary.ProductID = p.ProductID
				summary.UnitPrice = p.UnitPrice
			}
		}
		garments = append(garments, summary)
	}
	return garments
}

// CreateSession starts a session, restoring the client's last selected garment when one was saved
func (s *CustomizerService) CreateSession(ctx context.Context, req models.CreateSessionRequest) (models.SessionView, error) {
	session := NewSession(s.registry, s.composer, s.opts, s.log)
	session.clientID = strings.TrimSpace(req.ClientID)

	if s.prefs != nil {
		saved, err := s.prefs.Load(ctx, session.clientID)
		if err != nil {
			s.log.Warn("⚠️  Could not restore garment preference", "error", err)
		} else if saved != nil {
			if err := session.SelectGarment(*saved); err != nil {
				return models.SessionView{}, err
			}
		}
	}

	s.sessions.Add(session)
	s.log.Info("🆕 Session created", "sessionId", session.ID(), "state", session.State())
	return session.View(), nil
}

func (s *CustomizerService) GetSession(sessionID string) (models.SessionView, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}
	return session.View(), nil
}

func (s *CustomizerService) CloseSession(sessionID string) error {
	return s.sessions.Remove(sessionID)
}

// SelectGarment chooses the garment and persists it as the new default (last write wins)
func (s *CustomizerService) SelectGarment(ctx context.Context, sessionID string, req models.SelectGarmentRequest) (models.SessionView, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}
	sel, err := garment.NewSelection(req.GarmentID, req.BaseColor)
	if err != nil {
		return models.SessionView{}, &ValidationError{Field: "garment", Reason: err.Error()}
	}
	if _, ok := garment.OutlineFor(sel.GarmentID); !ok {
		s.log.Warn("⚠️  Unknown garment selected", "garmentId", sel.GarmentID)
	}
	if err := session.SelectGarment(sel); err != nil {
		return models.SessionView{}, err
	}

	if s.prefs != nil {
		if err := s.prefs.Save(ctx, session.clientID, sel); err != nil {
			s.log.Warn("⚠️  Could not persist garment preference", "error", err)
		}
	}
	return session.View(), nil
}

func (s *CustomizerService) SelectDesign(sessionID string, req models.SelectDesignRequest) (models.SessionView, error) {
	return s.apply(sessionID, func(session *Session) error {
		return session.SelectDesign(req.DesignID)
	})
}

func (s *CustomizerService) UpdatePlacement(sessionID string, req models.UpdatePlacementRequest) (models.SessionView, error) {
	return s.apply(sessionID, func(session *Session) error {
		return session.UpdatePlacement(req)
	})
}

func (s *CustomizerService) Nudge(sessionID string, req models.NudgeRequest) (models.SessionView, error) {
	dir, err := customizer.ParseDirection(req.Direction)
	if err != nil {
		return models.SessionView{}, &ValidationError{Field: "direction", Reason: err.Error()}
	}
	return s.apply(sessionID, func(session *Session) error {
		return session.Nudge(dir, req.Step)
	})
}

func (s *CustomizerService) Drag(sessionID string, req models.DragRequest) (models.SessionView, error) {
	return s.apply(sessionID, func(session *Session) error {
		return session.DragTo(req.X, req.Y)
	})
}

func (s *CustomizerService) SetColor(sessionID, key string, req models.SetColorRequest) (models.SessionView, error) {
	return s.apply(sessionID, func(session *Session) error {
		return session.SetColor(key, req.Value)
	})
}

func (s *CustomizerService) ToggleGroup(sessionID, label string) (models.SessionView, error) {
	return s.apply(sessionID, func(session *Session) error {
		return session.ToggleGroup(label)
	})
}

// Click applies a press given either as surface coordinates or as a named target
func (s *CustomizerService) Click(sessionID string, req models.ClickRequest) (models.SessionView, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}

	switch {
	case req.X != nil && req.Y != nil:
		session.ClickAt(*req.X, *req.Y)
	case strings.TrimSpace(req.Target) != "":
		t, err := render.ParseTarget(req.Target)
		if err != nil {
			return models.SessionView{}, &ValidationError{Field: "target", Reason: err.Error()}
		}
		session.Click(t)
	default:
		return models.SessionView{}, &ValidationError{Field: "click", Reason: "x and y or target is required"}
	}
	return session.View(), nil
}

func (s *CustomizerService) SetSurface(sessionID string, req models.SurfaceRequest) (models.SessionView, error) {
	mounted := true
	if req.Mounted != nil {
		mounted = *req.Mounted
	}
	return s.apply(sessionID, func(session *Session) error {
		return session.SetSurface(req.Width, req.Height, mounted)
	})
}

func (s *CustomizerService) PreviewHTML(sessionID string) ([]byte, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.PreviewHTML(s.html)
}

func (s *CustomizerService) Capture(ctx context.Context, sessionID string) (*models.CaptureResponse, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	draft, err := session.Capture(ctx, s.capturer)
	if err != nil {
		return nil, err
	}
	return captureResponse(draft.Image), nil
}

func (s *CustomizerService) Export(ctx context.Context, sessionID string, req models.ExportRequest) (*models.ExportResponse, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Export(ctx, s.capturer, req.Filename)
}

// AddToCart builds a cart line from the session. The preview image always matches the
// customization on the line: a current capture is reused, otherwise a fresh one is taken.
// No line is written when capturing fails.
func (s *CustomizerService) AddToCart(ctx context.Context, sessionID string, req models.AddToCartRequest) (*models.CartLine, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	cartID := strings.TrimSpace(req.CartID)
	if cartID == "" {
		return nil, &ValidationError{Field: "cartId", Reason: "is required"}
	}
	size := utils.NormalizeSize(req.SelectedSize)
	if size == "" {
		return nil, &ValidationError{Field: "selectedSize", Reason: "must be one of XS, S, M, L, XL"}
	}
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	draft, ok := session.Draft()
	if !ok {
		draft, err = session.Capture(ctx, s.capturer)
		if err != nil {
			s.log.Warn("⚠️  Not adding to cart, capture failed", "sessionId", sessionID, "error", err)
			return nil, err
		}
	}

	line := &models.CartLine{
		CartID:       cartID,
		GarmentID:    draft.Garment.GarmentID,
		BaseColor:    draft.Garment.BaseColor,
		DesignID:     draft.DesignID,
		Placement:    draft.Placement,
		Colors:       draft.Colors,
		SelectedSize: size,
		Quantity:     quantity,
		PreviewImage: draft.Image.DataURI,
	}
	if s.catalog != nil {
		if p, ok := s.catalog.ProductFor(draft.Garment.GarmentID); ok {
			line.ProductID = p.ProductID
			line.ProductName = p.Name
			line.UnitPrice = p.UnitPrice
		}
	}
	if line.ProductID == "" {
		line.ProductID = draft.Garment.GarmentID
		line.ProductName = draft.Garment.GarmentID
	}

	return s.carts.AddLine(ctx, line)
}

func (s *CustomizerService) apply(sessionID string, fn func(*Session) error) (models.SessionView, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}
	if err := fn(session); err != nil {
		return models.SessionView{}, err
	}
	return session.View(), nil
}

func captureResponse(p *snapshot.ImagePayload) *models.CaptureResponse {
	return &models.CaptureResponse{
		Image:      p.DataURI,
		Width:      p.Width,
		Height:     p.Height,
		CapturedAt: p.CapturedAt,
	}
}
