package models

// Product is the catalog entry a garment is sold as
type Product struct {
	ProductID    string `json:"productId"`
	GarmentID    string `json:"garmentId"`
	Name         string `json:"name"`
	UnitPrice    int64  `json:"unitPrice"` // cents
	BaseImageURL string `json:"baseImageUrl,omitempty"`
}
