package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"whosoever-apparel/db"
	"whosoever-apparel/logger"
	"whosoever-apparel/models"
)

// CartRepository handles database operations for cart lines
type CartRepository struct {
	log *logger.Logger
}

// NewCartRepository creates a new CartRepository
func NewCartRepository(log *logger.Logger) *CartRepository {
	if log == nil {
		log = logger.Nop()
	}
	return &CartRepository{log: log.With("repository", "CartRepository")}
}

// Ensure CartRepository implements CartRepositoryInterface
var _ CartRepositoryInterface = (*CartRepository)(nil)

// EnsureSchema creates the cart_lines table when missing
func (r *CartRepository) EnsureSchema(ctx context.Context) error {
	if _, err := db.DB.ExecContext(ctx, models.CartLine{}.CreateTableSQL()); err != nil {
		return fmt.Errorf("failed to create cart_lines table: %w", err)
	}
	return nil
}

const cartLineColumns = `
	id, cart_id, product_id, product_name, unit_price, garment_id, base_color, design_id,
	placement, colors, selected_size, quantity, preview_image, created_at, updated_at`

// Upsert inserts the line or, when the match key already exists, adds to its quantity
func (r *CartRepository) Upsert(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	r.log.Info("🛒 Upsert cart line",
		"cartId", line.CartID, "garmentId", line.GarmentID, "size", line.SelectedSize,
		"designKey", line.DesignKey(), "quantity", line.Quantity)

	placement, err := json.Marshal(line.Placement)
	if err != nil {
		return nil, fmt.Errorf("failed to encode placement: %w", err)
	}
	colors := line.Colors
	if colors == nil {
		colors = map[string]string{}
	}
	colorsJSON, err := json.Marshal(colors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode colors: %w", err)
	}

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		r.log.Error("❌ Error starting transaction", "error", err)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO cart_lines (cart_id, product_id, product_name, unit_price, garment_id, base_color,
			design_id, design_key, placement, colors, selected_size, quantity, preview_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		ON CONFLICT (cart_id, garment_id, selected_size, design_key)
		DO UPDATE SET
			quantity = cart_lines.quantity + EXCLUDED.quantity,
			base_color = EXCLUDED.base_color,
			placement = EXCLUDED.placement,
			colors = EXCLUDED.colors,
			preview_image = EXCLUDED.preview_image,
			updated_at = NOW()
		RETURNING` + cartLineColumns

	var designID sql.NullString
	if line.DesignID != nil {
		designID = sql.NullString{String: *line.DesignID, Valid: true}
	}

	saved, err := scanCartLine(tx.QueryRowContext(ctx, query,
		line.CartID, line.ProductID, line.ProductName, line.UnitPrice, line.GarmentID, line.BaseColor,
		designID, line.DesignKey(), placement, colorsJSON, line.SelectedSize, line.Quantity, line.PreviewImage,
	))
	if err != nil {
		r.log.Error("❌ Error upserting cart line", "error", err)
		return nil, fmt.Errorf("failed to upsert cart line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.log.Error("❌ Error committing transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Info("✓ Cart line stored", "lineId", saved.ID, "quantity", saved.Quantity)
	return saved, nil
}

// ListLines returns the lines of a cart in insertion order
func (r *CartRepository) ListLines(ctx context.Context, cartID string) ([]models.CartLine, error) {
	query := `SELECT` + cartLineColumns + `
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY id ASC`

	rows, err := db.DB.QueryContext(ctx, query, cartID)
	if err != nil {
		r.log.Error("❌ Error querying cart lines", "cartId", cartID, "error", err)
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart lines: %w", err)
	}
	return lines, nil
}

// GetLine returns one line of a cart
func (r *CartRepository) GetLine(ctx context.Context, cartID string, lineID int64) (*models.CartLine, error) {
	query := `SELECT` + cartLineColumns + `
		FROM cart_lines
		WHERE cart_id = $1 AND id = $2`

	line, err := scanCartLine(db.DB.QueryRowContext(ctx, query, cartID, lineID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &LineNotFoundError{CartID: cartID, LineID: lineID}
		}
		return nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	return line, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCartLine(row rowScanner) (*models.CartLine, error) {
	var line models.CartLine
	var designID sql.NullString
	var placement, colors []byte

	err := row.Scan(
		&line.ID,
		&line.CartID,
		&line.ProductID,
		&line.ProductName,
		&line.UnitPrice,
		&line.GarmentID,
		&line.BaseColor,
		&designID,
		&placement,
		&colors,
		&line.SelectedSize,
		&line.Quantity,
		&line.PreviewImage,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if designID.Valid {
		id := designID.String
		line.DesignID = &id
	}
	if err := json.Unmarshal(placement, &line.Placement); err != nil {
		return nil, fmt.Errorf("failed to decode placement: %w", err)
	}
	if err := json.Unmarshal(colors, &line.Colors); err != nil {
		return nil, fmt.Errorf("failed to decode colors: %w", err)
	}
	return &line, nil
}
