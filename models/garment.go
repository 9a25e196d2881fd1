package models

// GarmentSelection is the garment being customized and its base color
// Example: {"garmentId": "hoodie", "baseColor": "#DD8F3D"}
type GarmentSelection struct {
	GarmentID string `json:"garmentId"`
	BaseColor string `json:"baseColor"`
}

// GarmentSummary lists an available garment outline
type GarmentSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProductID string `json:"productId,omitempty"`
	UnitPrice int64  `json:"unitPrice,omitempty"`
}
