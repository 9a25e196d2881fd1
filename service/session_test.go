package service

import (
	"context"
	"errors"
	"testing"

	"whosoever-apparel/customizer"
	"whosoever-apparel/models"
	"whosoever-apparel/registry"
	"whosoever-apparel/render"
	"whosoever-apparel/snapshot"
)

func newSession(t *testing.T) (*Session, *registry.Registry) {
	t.Helper()
	reg, err := registry.Load("", nil)
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	composer, err := render.NewComposer(nil)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return NewSession(reg, composer, SessionOptions{}, nil), reg
}

func hoodie() models.GarmentSelection {
	return models.GarmentSelection{GarmentID: "hoodie", BaseColor: "#DD8F3D"}
}

func TestSessionStateFlow(t *testing.T) {
	s, _ := newSession(t)
	if s.State() != StateIdle {
		t.Fatalf("initial state: want=%s got=%s", StateIdle, s.State())
	}

	var te *TransitionError
	if err := s.SelectDesign(strPtr("Design 2")); !errors.As(err, &te) {
		t.Fatalf("design before garment: expected TransitionError, got=%v", err)
	}

	if err := s.SelectGarment(hoodie()); err != nil {
		t.Fatalf("SelectGarment: %v", err)
	}
	if s.State() != StateGarmentChosen {
		t.Fatalf("want=%s got=%s", StateGarmentChosen, s.State())
	}
	if err := s.SetColor("crossfill1", "#000000"); !errors.As(err, &te) {
		t.Fatalf("color before design: expected TransitionError, got=%v", err)
	}

	if err := s.SelectDesign(strPtr("Design 2")); err != nil {
		t.Fatalf("SelectDesign: %v", err)
	}
	if s.State() != StateDesignChosen {
		t.Fatalf("want=%s got=%s", StateDesignChosen, s.State())
	}

	if err := s.Nudge(customizer.Up, nil); err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	if s.State() != StatePlacementEditing {
		t.Fatalf("want=%s got=%s", StatePlacementEditing, s.State())
	}
	if err := s.SetColor("crossfill1", "#000000"); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	if s.State() != StateColorEditing {
		t.Fatalf("want=%s got=%s", StateColorEditing, s.State())
	}
	if err := s.UpdatePlacement(models.UpdatePlacementRequest{Size: f64(30)}); err != nil {
		t.Fatalf("UpdatePlacement: %v", err)
	}
	if s.State() != StatePlacementEditing {
		t.Fatalf("want=%s got=%s", StatePlacementEditing, s.State())
	}

	if err := s.SelectDesign(nil); err != nil {
		t.Fatalf("clear design: %v", err)
	}
	if s.State() != StateGarmentChosen {
		t.Fatalf("after clearing: want=%s got=%s", StateGarmentChosen, s.State())
	}
	if v := s.View(); v.DesignID != nil || len(v.Colors) != 0 {
		t.Fatalf("cleared design left state behind: %+v", v)
	}
}

func TestSessionUnknownDesign(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	var nf *registry.NotFoundError
	if err := s.SelectDesign(strPtr("Design 99")); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got=%v", err)
	}
	if s.State() != StateGarmentChosen {
		t.Fatalf("failed selection changed state to %s", s.State())
	}
}

func TestSessionRejectedColorLeavesState(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 2"))
	before := s.View()

	var uk *customizer.UnknownKeyError
	if err := s.SetColor("gradient1Stop1", "#FF0000"); !errors.As(err, &uk) {
		t.Fatalf("expected UnknownKeyError, got=%v", err)
	}
	var ic *customizer.InvalidColorError
	if err := s.SetColor("crossfill1", "blue"); !errors.As(err, &ic) {
		t.Fatalf("expected InvalidColorError, got=%v", err)
	}

	after := s.View()
	if after.State != before.State {
		t.Fatalf("state: want=%s got=%s", before.State, after.State)
	}
	for k, v := range before.Colors {
		if after.Colors[k] != v {
			t.Fatalf("%s: want=%s got=%s", k, v, after.Colors[k])
		}
	}
}

func TestSessionDesignSwitchReseeds(t *testing.T) {
	s, reg := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 2"))
	_ = s.SetColor("crossfill3", "#FF0000")
	_ = s.UpdatePlacement(models.UpdatePlacementRequest{X: f64(60), Y: f64(30)})

	if err := s.SelectDesign(strPtr("Design 1")); err != nil {
		t.Fatalf("SelectDesign: %v", err)
	}
	want, _ := reg.DefaultsFor("Design 1")
	got := s.View().Colors
	if len(got) != len(want) {
		t.Fatalf("colors: want %d keys got %d", len(want), len(got))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s: want=%s got=%s", k, v, got[k])
		}
	}
	if _, ok := got["crossfill3"]; ok {
		t.Fatalf("Design 2 key survived the switch")
	}
	if p := s.View().Placement; p.X != 60 || p.Y != 30 {
		t.Fatalf("placement should survive a design switch, got=%+v", p)
	}
}

func TestSessionReselectSameDesignKeepsColors(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 2"))
	_ = s.SetColor("crossfill1", "#123456")
	_ = s.SelectDesign(strPtr("Design 2"))
	if got := s.View().Colors["crossfill1"]; got != "#123456" {
		t.Fatalf("crossfill1: want=#123456 got=%s", got)
	}
}

func TestSessionToggleGroup(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 1"))

	if err := s.ToggleGroup("Characters"); err != nil {
		t.Fatalf("ToggleGroup: %v", err)
	}
	if err := s.ToggleGroup("Main Colors"); err != nil {
		t.Fatalf("ToggleGroup: %v", err)
	}
	open := 0
	for _, g := range s.View().ColorGroups {
		if g.Open {
			open++
			if g.Label != "Main Colors" {
				t.Fatalf("open group: want=Main Colors got=%s", g.Label)
			}
		}
	}
	if open != 1 {
		t.Fatalf("open groups: want=1 got=%d", open)
	}

	var nf *registry.NotFoundError
	if err := s.ToggleGroup("Nope"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got=%v", err)
	}
}

func TestSessionClickSelection(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 2"))
	if err := s.SetSurface(400, 500, true); err != nil {
		t.Fatalf("SetSurface: %v", err)
	}

	// default placement: left 200, top 125, width 100, height 100*444/224
	if got := s.ClickAt(250, 220); got != render.TargetDesign {
		t.Fatalf("design center: want=design got=%s", got)
	}
	v := s.View()
	if !v.DesignEditing || v.ActiveTarget != "design" {
		t.Fatalf("after design click: %+v", v)
	}

	if got := s.ClickAt(5, 5); got != render.TargetOutside {
		t.Fatalf("corner: want=outside got=%s", got)
	}
	if s.View().DesignEditing {
		t.Fatalf("outside click should deselect the design")
	}

	s.Click(render.TargetGarment)
	v = s.View()
	if !v.GarmentEditing || v.DesignEditing || v.ActiveTarget != "garment" {
		t.Fatalf("after garment click: %+v", v)
	}
	s.Click(render.TargetGarment)
	if s.View().GarmentEditing {
		t.Fatalf("second garment click should toggle it off")
	}
}

func TestSessionDragNeedsMeasuredSurface(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 2"))

	var te *TransitionError
	if err := s.DragTo(10, 10); !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got=%v", err)
	}

	_ = s.SetSurface(400, 500, true)
	if err := s.DragTo(100, 250); err != nil {
		t.Fatalf("DragTo: %v", err)
	}
	if p := s.View().Placement; p.X != 25 || p.Y != 50 {
		t.Fatalf("placement: want=(25,50) got=(%v,%v)", p.X, p.Y)
	}
}

func TestSessionResizeKeepsPercentages(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 2"))
	_ = s.SetSurface(400, 500, true)
	_ = s.SetSurface(800, 1000, true)
	_ = s.SetSurface(400, 500, true)

	v := s.View()
	if v.DesignRect == nil || v.DesignRect.Left != 200 || v.DesignRect.Top != 125 || v.DesignRect.Width != 100 {
		t.Fatalf("design rect drifted: %+v", v.DesignRect)
	}
	if v.Placement != customizer.DefaultPlacement {
		t.Fatalf("placement changed on resize: %+v", v.Placement)
	}
}

func TestSessionCaptureRequiresMountedSurface(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 2"))
	capturer := snapshot.NewCapturer(snapshot.NewCanvasRasterizer(), nil, nil)

	var ce *snapshot.CaptureError
	if _, err := s.Capture(context.Background(), capturer); !errors.As(err, &ce) {
		t.Fatalf("expected CaptureError, got=%v", err)
	}
	if ce.Stale {
		t.Fatalf("unmounted failure is not stale")
	}
	if s.State() == StateCapturedForCart {
		t.Fatalf("failed capture changed state")
	}

	_ = s.SetSurface(400, 500, true)
	draft, err := s.Capture(context.Background(), capturer)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if draft.Image.Width != 400 || draft.Image.Height != 500 {
		t.Fatalf("image size: got %dx%d", draft.Image.Width, draft.Image.Height)
	}
	if s.State() != StateCapturedForCart {
		t.Fatalf("want=%s got=%s", StateCapturedForCart, s.State())
	}
	if _, ok := s.Draft(); !ok {
		t.Fatalf("fresh capture should be the current draft")
	}

	// further edits move back to editing and invalidate the draft
	_ = s.Nudge(customizer.Left, nil)
	if s.State() != StatePlacementEditing {
		t.Fatalf("want=%s got=%s", StatePlacementEditing, s.State())
	}
	if _, ok := s.Draft(); ok {
		t.Fatalf("draft should be invalid after an edit")
	}
}

func TestSessionEditDuringCaptureIsStale(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 2"))
	_ = s.SetSurface(400, 500, true)

	gate := newGatedRasterizer()
	capturer := snapshot.NewCapturer(gate, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Capture(context.Background(), capturer)
		done <- err
	}()

	<-gate.entered
	if err := s.SetColor("crossfill3", "#FF0000"); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	close(gate.release)

	err := <-done
	var ce *snapshot.CaptureError
	if !errors.As(err, &ce) || !ce.Stale {
		t.Fatalf("expected stale CaptureError, got=%v", err)
	}
	if _, ok := s.Draft(); ok {
		t.Fatalf("stale capture must not become the draft")
	}
	if s.State() != StateColorEditing {
		t.Fatalf("want=%s got=%s", StateColorEditing, s.State())
	}
}

func TestSessionReseedCancelsCapture(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SelectDesign(strPtr("Design 2"))
	_ = s.SetSurface(400, 500, true)

	gate := newGatedRasterizer()
	capturer := snapshot.NewCapturer(gate, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Capture(context.Background(), capturer)
		done <- err
	}()

	<-gate.entered
	if err := s.SelectDesign(strPtr("Design 1")); err != nil {
		t.Fatalf("SelectDesign: %v", err)
	}

	err := <-done
	var ce *snapshot.CaptureError
	if !errors.As(err, &ce) || !ce.Stale {
		t.Fatalf("expected stale CaptureError, got=%v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("reseed should cancel the rasterizer, got=%v", err)
	}
}

func TestSessionTeardown(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	_ = s.SetSurface(400, 500, true)
	if n := s.Surface().ListenerCount(); n != 1 {
		t.Fatalf("listeners: want=1 got=%d", n)
	}

	s.Teardown()
	s.Teardown()
	if n := s.Surface().ListenerCount(); n != 0 {
		t.Fatalf("listeners after teardown: want=0 got=%d", n)
	}
	if s.Surface().Mounted() {
		t.Fatalf("surface should be unmounted")
	}
	var te *TransitionError
	if err := s.SelectGarment(hoodie()); !errors.As(err, &te) {
		t.Fatalf("edit after teardown: expected TransitionError, got=%v", err)
	}
}

func TestSessionPreviewHTMLBeforeMeasure(t *testing.T) {
	s, _ := newSession(t)
	_ = s.SelectGarment(hoodie())
	html, err := render.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("NewHTMLRenderer: %v", err)
	}
	page, err := s.PreviewHTML(html)
	if err != nil {
		t.Fatalf("PreviewHTML: %v", err)
	}
	if len(page) == 0 {
		t.Fatalf("empty page")
	}
}
