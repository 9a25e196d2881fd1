package models

import "time"

// CartLine is a customized garment handed to the cart.
// PreviewImage is a self-contained data URI captured when the line was built.
type CartLine struct {
	ID           int64             `json:"id"`
	CartID       string            `json:"cartId"`
	ProductID    string            `json:"productId"`
	ProductName  string            `json:"productName"`
	UnitPrice    int64             `json:"unitPrice"`
	GarmentID    string            `json:"garmentId"`
	BaseColor    string            `json:"baseColor"`
	DesignID     *string           `json:"designId"`
	Placement    PlacementState    `json:"placement"`
	Colors       map[string]string `json:"colors"`
	SelectedSize string            `json:"selectedSize"`
	Quantity     int               `json:"quantity"`
	PreviewImage string            `json:"previewImage"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// DesignKey is the design part of the cart match key; "" when no design was chosen
func (l *CartLine) DesignKey() string {
	if l.DesignID == nil {
		return ""
	}
	return *l.DesignID
}

// AddToCartRequest represents the request body for committing a session to a cart
// Example: {"cartId": "guest-42", "selectedSize": "M", "quantity": 2}
type AddToCartRequest struct {
	CartID       string `json:"cartId"`
	SelectedSize string `json:"selectedSize"`
	Quantity     int    `json:"quantity"`
}

// CartResponse represents a cart with its lines
type CartResponse struct {
	CartID         string     `json:"cartId"`
	Lines          []CartLine `json:"lines"`
	Total          int64      `json:"total"`
	TotalFormatted string     `json:"totalFormatted"`
}
