package repository

import (
	"context"
	"fmt"

	"whosoever-apparel/models"
)

// CartRepositoryInterface defines the contract for cart line persistence.
// Upsert matches on (cartId, garmentId, selectedSize, designKey): a match adds the quantity
// and refreshes the captured customization and preview image, otherwise the line is appended.
type CartRepositoryInterface interface {
	Upsert(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	ListLines(ctx context.Context, cartID string) ([]models.CartLine, error)
	GetLine(ctx context.Context, cartID string, lineID int64) (*models.CartLine, error)
}

// LineNotFoundError is returned when a cart line does not exist
type LineNotFoundError struct {
	CartID string
	LineID int64
}

func (e *LineNotFoundError) Error() string {
	return fmt.Sprintf("cart %s: line %d not found", e.CartID, e.LineID)
}
