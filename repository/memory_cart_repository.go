package repository

import (
	"context"
	"sync"
	"time"

	"whosoever-apparel/models"
)

// MemoryCartRepository keeps carts in process memory. Used when no database is configured.
type MemoryCartRepository struct {
	mu     sync.Mutex
	nextID int64
	lines  map[string][]*models.CartLine
	now    func() time.Time
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{lines: make(map[string][]*models.CartLine), now: time.Now}
}

var _ CartRepositoryInterface = (*MemoryCartRepository)(nil)

func (r *MemoryCartRepository) Upsert(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, existing := range r.lines[line.CartID] {
		if existing.GarmentID == line.GarmentID &&
			existing.SelectedSize == line.SelectedSize &&
			existing.DesignKey() == line.DesignKey() {
			existing.Quantity += line.Quantity
			existing.BaseColor = line.BaseColor
			existing.Placement = line.Placement
			existing.Colors = copyColors(line.Colors)
			existing.PreviewImage = line.PreviewImage
			existing.UpdatedAt = now
			return cloneLine(existing), nil
		}
	}

	r.nextID++
	stored := cloneLine(line)
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.lines[line.CartID] = append(r.lines[line.CartID], stored)
	return cloneLine(stored), nil
}

func (r *MemoryCartRepository) ListLines(ctx context.Context, cartID string) ([]models.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]models.CartLine, 0, len(r.lines[cartID]))
	for _, l := range r.lines[cartID] {
		lines = append(lines, *cloneLine(l))
	}
	return lines, nil
}

func (r *MemoryCartRepository) GetLine(ctx context.Context, cartID string, lineID int64) (*models.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines[cartID] {
		if l.ID == lineID {
			return cloneLine(l), nil
		}
	}
	return nil, &LineNotFoundError{CartID: cartID, LineID: lineID}
}

func cloneLine(l *models.CartLine) *models.CartLine {
	c := *l
	c.Colors = copyColors(l.Colors)
	if l.DesignID != nil {
		id := *l.DesignID
		c.DesignID = &id
	}
	return &c
}

func copyColors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
