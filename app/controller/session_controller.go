package controller

import (
	"context"
	"net/http"
	"time"

	"whosoever-apparel/logger"
	"whosoever-apparel/models"
	"whosoever-apparel/service"
)

// clientIDHeader identifies the browser when POST /sessions carries no body
const clientIDHeader = "X-Client-Id"

// captureTimeout bounds a single snapshot, including a cold browser start
const captureTimeout = 30 * time.Second

// SessionController handles HTTP requests for customization sessions
type SessionController struct {
	service service.CustomizerServiceInterface
	log     *logger.Logger
}

// NewSessionController creates a new SessionController
func NewSessionController(svc service.CustomizerServiceInterface, log *logger.Logger) *SessionController {
	return &SessionController{service: svc, log: log.With("controller", "SessionController")}
}

// sessionRequest parses /sessions/{id}[/...] and checks the method
func (c *SessionController) sessionRequest(w http.ResponseWriter, r *http.Request, method, op string) ([]string, bool) {
	if r.Method != method {
		methodNotAllowed(w)
		return nil, false
	}
	segments, err := pathSegments(r, "/sessions/")
	if err != nil {
		writeError(w, c.log, op, err)
		return nil, false
	}
	if len(segments) == 0 || segments[0] == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return nil, false
	}
	return segments, true
}

// CreateSession handles POST /sessions
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req models.CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "CreateSession", err)
		return
	}
	if req.ClientID == "" {
		req.ClientID = r.Header.Get(clientIDHeader)
	}
	view, err := c.service.CreateSession(r.Context(), req)
	if err != nil {
		writeError(w, c.log, "CreateSession", err)
		return
	}
	writeJSON(w, c.log, http.StatusCreated, view)
}

// GetSession handles GET /sessions/{id}
func (c *SessionController) GetSession(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodGet, "GetSession")
	if !ok {
		return
	}
	view, err := c.service.GetSession(segments[0])
	c.respond(w, "GetSession", view, err)
}

// CloseSession handles DELETE /sessions/{id}
func (c *SessionController) CloseSession(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodDelete, "CloseSession")
	if !ok {
		return
	}
	if err := c.service.CloseSession(segments[0]); err != nil {
		writeError(w, c.log, "CloseSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectGarment handles PUT /sessions/{id}/garment
func (c *SessionController) SelectGarment(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPut, "SelectGarment")
	if !ok {
		return
	}
	var req models.SelectGarmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "SelectGarment", err)
		return
	}
	view, err := c.service.SelectGarment(r.Context(), segments[0], req)
	c.respond(w, "SelectGarment", view, err)
}

// SelectDesign handles PUT /sessions/{id}/design
// Example: {"designId": "Design 2"} or {"designId": null}
func (c *SessionController) SelectDesign(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPut, "SelectDesign")
	if !ok {
		return
	}
	var req models.SelectDesignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "SelectDesign", err)
		return
	}
	view, err := c.service.SelectDesign(segments[0], req)
	c.respond(w, "SelectDesign", view, err)
}

// UpdatePlacement handles PUT /sessions/{id}/placement
func (c *SessionController) UpdatePlacement(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPut, "UpdatePlacement")
	if !ok {
		return
	}
	var req models.UpdatePlacementRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "UpdatePlacement", err)
		return
	}
	view, err := c.service.UpdatePlacement(segments[0], req)
	c.respond(w, "UpdatePlacement", view, err)
}

// Nudge handles POST /sessions/{id}/nudge
func (c *SessionController) Nudge(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPost, "Nudge")
	if !ok {
		return
	}
	var req models.NudgeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "Nudge", err)
		return
	}
	view, err := c.service.Nudge(segments[0], req)
	c.respond(w, "Nudge", view, err)
}

// Drag handles POST /sessions/{id}/drag
func (c *SessionController) Drag(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPost, "Drag")
	if !ok {
		return
	}
	var req models.DragRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "Drag", err)
		return
	}
	view, err := c.service.Drag(segments[0], req)
	c.respond(w, "Drag", view, err)
}

// SetColor handles PUT /sessions/{id}/colors/{key}
func (c *SessionController) SetColor(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPut, "SetColor")
	if !ok {
		return
	}
	if len(segments) != 3 {
		http.Error(w, "attribute key is required", http.StatusBadRequest)
		return
	}
	var req models.SetColorRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "SetColor", err)
		return
	}
	view, err := c.service.SetColor(segments[0], segments[2], req)
	c.respond(w, "SetColor", view, err)
}

// ToggleGroup handles POST /sessions/{id}/groups/{label}/toggle
func (c *SessionController) ToggleGroup(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPost, "ToggleGroup")
	if !ok {
		return
	}
	if len(segments) != 4 {
		http.Error(w, "group label is required", http.StatusBadRequest)
		return
	}
	view, err := c.service.ToggleGroup(segments[0], segments[2])
	c.respond(w, "ToggleGroup", view, err)
}

// Click handles POST /sessions/{id}/click
// Example: {"x": 120, "y": 80} or {"target": "garment"}
func (c *SessionController) Click(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPost, "Click")
	if !ok {
		return
	}
	var req models.ClickRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "Click", err)
		return
	}
	view, err := c.service.Click(segments[0], req)
	c.respond(w, "Click", view, err)
}

// SetSurface handles PUT /sessions/{id}/surface
func (c *SessionController) SetSurface(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPut, "SetSurface")
	if !ok {
		return
	}
	var req models.SurfaceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "SetSurface", err)
		return
	}
	view, err := c.service.SetSurface(segments[0], req)
	c.respond(w, "SetSurface", view, err)
}

// Preview handles GET /sessions/{id}/preview
func (c *SessionController) Preview(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodGet, "Preview")
	if !ok {
		return
	}
	page, err := c.service.PreviewHTML(segments[0])
	if err != nil {
		writeError(w, c.log, "Preview", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// Capture handles POST /sessions/{id}/capture
func (c *SessionController) Capture(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPost, "Capture")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), captureTimeout)
	defer cancel()

	resp, err := c.service.Capture(ctx, segments[0])
	if err != nil {
		writeError(w, c.log, "Capture", err)
		return
	}
	writeJSON(w, c.log, http.StatusOK, resp)
}

// Export handles POST /sessions/{id}/export
func (c *SessionController) Export(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPost, "Export")
	if !ok {
		return
	}
	var req models.ExportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "Export", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), captureTimeout)
	defer cancel()

	resp, err := c.service.Export(ctx, segments[0], req)
	if err != nil {
		writeError(w, c.log, "Export", err)
		return
	}
	writeJSON(w, c.log, http.StatusOK, resp)
}

// AddToCart handles POST /sessions/{id}/cart
// Example: {"cartId": "guest-42", "selectedSize": "M", "quantity": 1}
func (c *SessionController) AddToCart(w http.ResponseWriter, r *http.Request) {
	segments, ok := c.sessionRequest(w, r, http.MethodPost, "AddToCart")
	if !ok {
		return
	}
	var req models.AddToCartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, c.log, "AddToCart", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), captureTimeout)
	defer cancel()

	line, err := c.service.AddToCart(ctx, segments[0], req)
	if err != nil {
		writeError(w, c.log, "AddToCart", err)
		return
	}
	writeJSON(w, c.log, http.StatusOK, line)
}

func (c *SessionController) respond(w http.ResponseWriter, op string, view models.SessionView, err error) {
	if err != nil {
		writeError(w, c.log, op, err)
		return
	}
	writeJSON(w, c.log, http.StatusOK, view)
}
