package service

import (
	"context"

	"whosoever-apparel/models"
	"whosoever-apparel/snapshot"
)

// CartServiceInterface defines the contract for cart operations
type CartServiceInterface interface {
	AddLine(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	GetCart(ctx context.Context, cartID string) (*models.CartResponse, error)
	// LineImage returns a JPEG rendition of a line's preview, with optional caption lines drawn under it
	LineImage(ctx context.Context, cartID string, lineID int64, variant snapshot.Variant, caption []string) ([]byte, error)
}
