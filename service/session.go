package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"whosoever-apparel/customizer"
	"whosoever-apparel/logger"
	"whosoever-apparel/models"
	"whosoever-apparel/registry"
	"whosoever-apparel/render"
	"whosoever-apparel/snapshot"
)

// SessionState is where an editing session is in the customization flow
type SessionState string

const (
	StateIdle             SessionState = "idle"
	StateGarmentChosen    SessionState = "garment_chosen"
	StateDesignChosen     SessionState = "design_chosen"
	StatePlacementEditing SessionState = "placement_editing"
	StateColorEditing     SessionState = "color_editing"
	StateCapturedForCart  SessionState = "captured_for_cart"
)

// Size used for HTML previews requested before the client reported a surface
const (
	defaultPreviewWidth  = 400
	defaultPreviewHeight = 500
)

// TransitionError is returned when an operation is not allowed in the current state
type TransitionError struct {
	State  SessionState
	Op     string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s in state %s: %s", e.Op, e.State, e.Reason)
}

// SessionOptions configures placement behavior of new sessions
type SessionOptions struct {
	Bounds    customizer.PlacementBounds
	NudgeStep float64
}

// LineDraft is the customization a capture was taken of, ready to become a cart line
type LineDraft struct {
	Garment   models.GarmentSelection
	DesignID  *string
	Placement models.PlacementState
	Colors    map[string]string
	Image     *snapshot.ImagePayload

	epoch    string
	revision uint64
}

// Session is one editing session: garment, design, placement, colors, selection and the
// preview mounted on its surface. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id       string
	clientID string
	epoch    string
	state    SessionState

	registry *registry.Registry
	composer *render.Composer
	log      *logger.Logger

	garment   *models.GarmentSelection
	design    *models.DesignDefinition
	placement *customizer.Placement
	colors    *customizer.ColorOverrides
	selection render.Selection
	nudgeStep float64

	surface *render.Surface
	preview *render.Preview

	// revision bumps on every edit that changes the composed scene
	revision      uint64
	draft         *LineDraft
	captureSeq    uint64
	cancelCapture context.CancelFunc
	closed        bool
}

// NewSession starts an idle session with an unmounted surface
func NewSession(reg *registry.Registry, composer *render.Composer, opts SessionOptions, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	if opts.NudgeStep <= 0 {
		opts.NudgeStep = 1
	}
	id := uuid.NewString()
	s := &Session{
		id:        id,
		epoch:     uuid.NewString(),
		state:     StateIdle,
		registry:  reg,
		composer:  composer,
		log:       log.With("session", id),
		placement: customizer.NewPlacement(opts.Bounds),
		colors:    customizer.NewColorOverrides(),
		nudgeStep: opts.NudgeStep,
		surface:   render.NewSurface(),
	}
	s.preview = render.NewPreview(composer, log)
	s.preview.Attach(s.surface)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Surface exposes the measured drawing area, mainly for tests and the resize endpoint
func (s *Session) Surface() *render.Surface {
	return s.surface
}

// SelectGarment chooses the garment and its base color. Switching to another garment id
// invalidates any capture in flight.
func (s *Session) SelectGarment(sel models.GarmentSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen("select garment"); err != nil {
		return err
	}

	if s.garment == nil || s.garment.GarmentID != sel.GarmentID {
		s.renewEpoch()
	}
	g := sel
	s.garment = &g

	next := s.state
	switch {
	case s.design == nil:
		next = StateGarmentChosen
	case s.state == StateCapturedForCart:
		next = StateDesignChosen
	}
	s.edited(next)
	s.log.Info("👕 Garment selected", "garmentId", g.GarmentID, "baseColor", g.BaseColor)
	return nil
}

// SelectDesign chooses a design and reseeds the colors with its defaults.
// A nil id clears the design. Re-selecting the current design changes nothing.
// Placement is kept across design switches.
func (s *Session) SelectDesign(designID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen("select design"); err != nil {
		return err
	}

	if designID == nil {
		if s.design == nil {
			return nil
		}
		s.design = nil
		s.colors.Clear()
		s.selection.ClearDesign()
		s.renewEpoch()
		next := StateIdle
		if s.garment != nil {
			next = StateGarmentChosen
		}
		s.edited(next)
		s.log.Info("🧹 Design cleared")
		return nil
	}

	if s.garment == nil {
		return &TransitionError{State: s.state, Op: "select design", Reason: "choose a garment first"}
	}
	def, err := s.registry.Lookup(*designID)
	if err != nil {
		return err
	}
	if s.design != nil && s.design.ID == def.ID {
		return nil
	}
	defaults, err := s.registry.DefaultsFor(def.ID)
	if err != nil {
		return err
	}

	s.design = def
	s.colors.Seed(def, defaults)
	s.renewEpoch()
	s.edited(StateDesignChosen)
	s.log.Info("🎨 Design selected", "designId", def.ID, "keys", len(defaults))
	return nil
}

// UpdatePlacement sets any of x, y, size and rotation; missing fields keep their value
func (s *Session) UpdatePlacement(req models.UpdatePlacementRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDesign("update placement"); err != nil {
		return err
	}

	state := s.placement.State()
	if req.X != nil {
		state.X = *req.X
	}
	if req.Y != nil {
		state.Y = *req.Y
	}
	s.placement.SetPosition(state.X, state.Y)
	if req.Size != nil {
		s.placement.SetSize(*req.Size)
	}
	if req.Rotation != nil {
		s.placement.SetRotation(*req.Rotation)
	}
	s.edited(StatePlacementEditing)
	return nil
}

// Nudge moves the design one step; a nil step uses the configured default
func (s *Session) Nudge(dir customizer.Direction, step *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDesign("nudge"); err != nil {
		return err
	}
	st := s.nudgeStep
	if step != nil {
		st = *step
	}
	s.placement.Nudge(dir, st)
	s.edited(StatePlacementEditing)
	return nil
}

// DragTo moves the design to a pointer position in surface pixels
func (s *Session) DragTo(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDesign("drag"); err != nil {
		return err
	}
	w, h := s.surface.Size()
	if w <= 0 || h <= 0 {
		return &TransitionError{State: s.state, Op: "drag", Reason: "surface has not been measured"}
	}
	s.placement.DragTo(x, y, w, h)
	s.edited(StatePlacementEditing)
	return nil
}

// SetColor overrides one attribute of the current design
func (s *Session) SetColor(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDesign("set color"); err != nil {
		return err
	}
	if err := s.colors.SetColor(key, value); err != nil {
		return err
	}
	s.edited(StateColorEditing)
	return nil
}

// ToggleGroup opens or closes a color group. Only the editing focus changes.
func (s *Session) ToggleGroup(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDesign("toggle group"); err != nil {
		return err
	}
	if !s.colors.ToggleGroup(label) {
		return &registry.NotFoundError{Kind: "group", ID: label}
	}
	if s.state != StateCapturedForCart {
		s.state = StateColorEditing
	}
	return nil
}

// Click applies a press on a named target
func (s *Session) Click(t render.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.design == nil && t == render.TargetDesign {
		t = render.TargetOutside
	}
	s.selection.Click(t)
}

// ClickAt hit-tests a surface point against the current scene and applies the press
func (s *Session) ClickAt(x, y float64) render.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	scene, _ := s.preview.Scene()
	t := render.Classify(scene, x, y)
	s.selection.Click(t)
	return t
}

// SetSurface reports the measured surface. mounted=false unmounts it.
func (s *Session) SetSurface(width, height int, mounted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen("resize surface"); err != nil {
		return err
	}

	w, h := s.surface.Size()
	wasMounted := s.surface.Mounted()
	switch {
	case !mounted:
		s.surface.Unmount()
	case !wasMounted:
		s.surface.Mount(width, height)
	default:
		s.surface.Resize(width, height)
	}

	nw, nh := s.surface.Size()
	if nw != w || nh != h || s.surface.Mounted() != wasMounted {
		s.revision++
		s.draft = nil
	}
	return nil
}

// Capture snapshots the mounted preview. A capture already running is cancelled.
// The result is discarded as stale when the session was edited, reseeded or torn down
// while the rasterizer ran.
func (s *Session) Capture(ctx context.Context, capturer *snapshot.Capturer) (*LineDraft, error) {
	s.mu.Lock()
	if err := s.checkOpen("capture"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.garment == nil {
		s.mu.Unlock()
		return nil, &TransitionError{State: s.state, Op: "capture", Reason: "choose a garment first"}
	}
	if s.cancelCapture != nil {
		s.cancelCapture()
	}
	captureCtx, cancel := context.WithCancel(ctx)
	s.captureSeq++
	seq := s.captureSeq
	s.cancelCapture = cancel
	draft := s.lineDraftLocked()
	surface := snapshot.PreviewSurface(s.surface, s.preview)
	s.mu.Unlock()

	payload, err := capturer.Capture(captureCtx, surface)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	if s.captureSeq == seq {
		s.cancelCapture = nil
	}
	stale := s.closed || s.captureSeq != seq || s.epoch != draft.epoch || s.revision != draft.revision

	if err != nil {
		var ce *snapshot.CaptureError
		if stale && errors.As(err, &ce) {
			return nil, &snapshot.CaptureError{Reason: ce.Reason, Stale: true, Err: ce.Err}
		}
		return nil, err
	}
	if stale {
		s.log.Warn("⚠️  Discarding stale capture", "epoch", draft.epoch, "revision", draft.revision)
		return nil, &snapshot.CaptureError{Reason: "session changed while capturing", Stale: true}
	}

	draft.Image = payload
	s.draft = draft
	s.state = StateCapturedForCart
	return draft, nil
}

// Export captures the preview and saves it through the capturer's file sink
func (s *Session) Export(ctx context.Context, capturer *snapshot.Capturer, filename string) (*models.ExportResponse, error) {
	s.mu.Lock()
	if err := s.checkOpen("export"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.garment == nil {
		s.mu.Unlock()
		return nil, &TransitionError{State: s.state, Op: "export", Reason: "choose a garment first"}
	}
	surface := snapshot.PreviewSurface(s.surface, s.preview)
	s.mu.Unlock()

	return capturer.ExportAsFile(ctx, surface, filename)
}

// Draft returns the latest capture when nothing changed since it was taken
func (s *Session) Draft() (*LineDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil || s.draft.epoch != s.epoch || s.draft.revision != s.revision {
		return nil, false
	}
	return s.draft, true
}

// Teardown unmounts the preview, cancels any capture and rejects further edits
func (s *Session) Teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.renewEpoch()
	s.draft = nil
	s.selection.Reset()
	s.mu.Unlock()

	s.preview.Detach()
	s.surface.Unmount()
	s.log.Info("🔚 Session closed")
}

// View is a consistent read of the whole session
func (s *Session) View() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := s.surface.Size()
	view := models.SessionView{
		ID:             s.id,
		State:          string(s.state),
		Placement:      s.placement.State(),
		Colors:         s.colors.CurrentColors(),
		ColorGroups:    s.colors.Groups(),
		GarmentEditing: s.selection.GarmentSelected,
		DesignEditing:  s.selection.DesignSelected,
		ActiveTarget:   string(s.selection.Active),
		Surface:        models.SurfaceView{Width: w, Height: h, Mounted: s.surface.Mounted()},
	}
	if s.garment != nil {
		g := *s.garment
		view.Garment = &g
	}
	if s.design != nil {
		id := s.design.ID
		view.DesignID = &id
		rect := s.placement.ToPixelRect(float64(w), float64(h))
		view.DesignRect = &rect
	}
	if s.draft != nil && s.draft.epoch == s.epoch && s.draft.revision == s.revision {
		view.HasCapture = true
		at := s.draft.Image.CapturedAt
		view.CapturedAt = &at
	}
	return view
}

// PreviewHTML renders the current scene as a standalone document.
// An unmeasured surface is rendered at a default size.
func (s *Session) PreviewHTML(html *render.HTMLRenderer) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scene, err := s.preview.Scene()
	if err != nil {
		return nil, err
	}
	if scene == nil || scene.Width == 0 || scene.Height == 0 {
		scene, err = s.composer.Compose(s.inputLocked(), defaultPreviewWidth, defaultPreviewHeight)
		if err != nil {
			return nil, err
		}
	}
	return html.Render(scene, s.selection)
}

func (s *Session) checkOpen(op string) error {
	if s.closed {
		return &TransitionError{State: s.state, Op: op, Reason: "session is closed"}
	}
	return nil
}

func (s *Session) requireDesign(op string) error {
	if err := s.checkOpen(op); err != nil {
		return err
	}
	if s.design == nil {
		return &TransitionError{State: s.state, Op: op, Reason: "choose a design first"}
	}
	return nil
}

// renewEpoch starts a new session identity and cancels the capture bound to the old one
func (s *Session) renewEpoch() {
	s.epoch = uuid.NewString()
	if s.cancelCapture != nil {
		s.cancelCapture()
		s.cancelCapture = nil
	}
}

// edited records a scene-changing edit and recomposes the preview
func (s *Session) edited(next SessionState) {
	s.revision++
	s.draft = nil
	s.state = next
	if _, err := s.preview.Update(s.inputLocked()); err != nil {
		s.log.Error("❌ Preview update failed", "error", err)
	}
}

func (s *Session) inputLocked() render.Input {
	return render.Input{
		Garment:   s.garment,
		Design:    s.design,
		Colors:    s.colors.CurrentColors(),
		Placement: s.placement.State(),
	}
}

func (s *Session) lineDraftLocked() *LineDraft {
	d := &LineDraft{
		Placement: s.placement.State(),
		Colors:    s.colors.CurrentColors(),
		epoch:     s.epoch,
		revision:  s.revision,
	}
	if s.garment != nil {
		d.Garment = *s.garment
	}
	if s.design != nil {
		id := s.design.ID
		d.DesignID = &id
	}
	return d
}
