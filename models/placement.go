package models

// PlacementState is the normalized position, size and rotation of a design over the garment canvas.
// X and Y are percentages of the canvas width/height, Size is the design width as a percentage
// of the canvas width and Rotation is in degrees (clockwise).
type PlacementState struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Rotation float64 `json:"rotation"`
}

// PixelRect is a placement resolved against a measured canvas; height is decided by the renderer
type PixelRect struct {
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
	Width float64 `json:"width"`
}

// UpdatePlacementRequest represents the request body for setting a placement
// Fields left out keep their current value
type UpdatePlacementRequest struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Size     *float64 `json:"size,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// NudgeRequest represents the request body for nudging a design
// Example: {"direction": "up", "step": 1}
type NudgeRequest struct {
	Direction string   `json:"direction"`
	Step      *float64 `json:"step,omitempty"`
}

// DragRequest carries a pointer position in surface pixels
type DragRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
