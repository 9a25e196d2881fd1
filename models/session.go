package models

import "time"

// SessionView is the externally visible state of a customization session
type SessionView struct {
	ID             string            `json:"id"`
	State          string            `json:"state"`
	Garment        *GarmentSelection `json:"garment"`
	DesignID       *string           `json:"designId"`
	Placement      PlacementState    `json:"placement"`
	Colors         map[string]string `json:"colors"`
	ColorGroups    []ColorGroupView  `json:"colorGroups"`
	GarmentEditing bool              `json:"garmentSelected"`
	DesignEditing  bool              `json:"designSelected"`
	ActiveTarget   string            `json:"activeTarget"`
	Surface        SurfaceView       `json:"surface"`
	DesignRect     *PixelRect        `json:"designRect,omitempty"`
	HasCapture     bool              `json:"hasCapture"`
	CapturedAt     *time.Time        `json:"capturedAt,omitempty"`
}

// SurfaceView is the measured drawing surface of a session
type SurfaceView struct {
	Width   int  `json:"width"`
	Height  int  `json:"height"`
	Mounted bool `json:"mounted"`
}

// CreateSessionRequest is the optional body of POST /sessions. ClientID scopes the
// remembered garment to one browser; sessions without it start fresh.
type CreateSessionRequest struct {
	ClientID string `json:"clientId,omitempty"`
}

// SelectGarmentRequest represents the request body for choosing a garment
type SelectGarmentRequest struct {
	GarmentID string `json:"garmentId"`
	BaseColor string `json:"baseColor,omitempty"`
}

// SelectDesignRequest represents the request body for choosing a design; null clears it
type SelectDesignRequest struct {
	DesignID *string `json:"designId"`
}

// SetColorRequest represents the request body for overriding one attribute color
type SetColorRequest struct {
	Value string `json:"value"`
}

// ClickRequest is a pointer press on the preview, either as surface coordinates or a named target
type ClickRequest struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Target string   `json:"target,omitempty"`
}

// SurfaceRequest reports the measured size of the preview surface
type SurfaceRequest struct {
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Mounted *bool `json:"mounted,omitempty"`
}

// ExportRequest represents the request body for saving a snapshot as a file
type ExportRequest struct {
	Filename string `json:"filename,omitempty"`
}

// CaptureResponse is returned after a successful capture
type CaptureResponse struct {
	Image      string    `json:"image"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CapturedAt time.Time `json:"capturedAt"`
}

// ExportResponse is returned after a snapshot has been saved
type ExportResponse struct {
	Filename string `json:"filename"`
	Location string `json:"location"`
	Bytes    int    `json:"bytes"`
}
