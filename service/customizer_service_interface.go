package service

import (
	"context"

	"whosoever-apparel/models"
)

// CustomizerServiceInterface defines the contract for garment customization sessions
type CustomizerServiceInterface interface {
	ListDesigns() []models.DesignSummary
	GetDesign(designID string) (*models.DesignDetail, error)
	ListGarments() []models.GarmentSummary

	CreateSession(ctx context.Context, req models.CreateSessionRequest) (models.SessionView, error)
	GetSession(sessionID string) (models.SessionView, error)
	CloseSession(sessionID string) error

	SelectGarment(ctx context.Context, sessionID string, req models.SelectGarmentRequest) (models.SessionView, error)
	SelectDesign(sessionID string, req models.SelectDesignRequest) (models.SessionView, error)
	UpdatePlacement(sessionID string, req models.UpdatePlacementRequest) (models.SessionView, error)
	Nudge(sessionID string, req models.NudgeRequest) (models.SessionView, error)
	Drag(sessionID string, req models.DragRequest) (models.SessionView, error)
	SetColor(sessionID, key string, req models.SetColorRequest) (models.SessionView, error)
	ToggleGroup(sessionID, label string) (models.SessionView, error)
	Click(sessionID string, req models.ClickRequest) (models.SessionView, error)
	SetSurface(sessionID string, req models.SurfaceRequest) (models.SessionView, error)
	PreviewHTML(sessionID string) ([]byte, error)

	// Capture freezes the preview. Edits made while it runs make it fail as stale.
	Capture(ctx context.Context, sessionID string) (*models.CaptureResponse, error)
	Export(ctx context.Context, sessionID string, req models.ExportRequest) (*models.ExportResponse, error)
	// AddToCart commits the session to a cart, capturing first unless a current capture exists
	AddToCart(ctx context.Context, sessionID string, req models.AddToCartRequest) (*models.CartLine, error)
}
