package service

import (
	"context"
	"fmt"

	"whosoever-apparel/logger"
	"whosoever-apparel/models"
	"whosoever-apparel/repository"
	"whosoever-apparel/snapshot"
	"whosoever-apparel/utils"
)

// CartService stores cart lines and serves their preview images
// Implements CartServiceInterface
type CartService struct {
	repository repository.CartRepositoryInterface
	cache      *snapshot.VariantCache
	log        *logger.Logger
}

// NewCartService creates a new CartService. cache may be nil.
func NewCartService(repo repository.CartRepositoryInterface, cache *snapshot.VariantCache, log *logger.Logger) *CartService {
	if log == nil {
		log = logger.Nop()
	}
	return &CartService{
		repository: repo,
		cache:      cache,
		log:        log.With("service", "CartService"),
	}
}

// Ensure CartService implements CartServiceInterface
var _ CartServiceInterface = (*CartService)(nil)

// AddLine upserts the line and pre-renders its image variants
func (s *CartService) AddLine(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	saved, err := s.repository.Upsert(ctx, line)
	if err != nil {
		return nil, err
	}
	s.log.Info("🛒 Added to cart",
		"cartId", saved.CartID,
		"lineId", saved.ID,
		"garmentId", saved.GarmentID,
		"designKey", saved.DesignKey(),
		"size", saved.SelectedSize,
		"quantity", saved.Quantity)

	if s.cache != nil {
		if err := s.warm(ctx, saved); err != nil {
			s.log.Warn("⚠️  Could not pre-render line images", "lineId", saved.ID, "error", err)
		}
	}
	return saved, nil
}

// GetCart returns every line with the cart total in cents
func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.CartResponse, error) {
	lines, err := s.repository.ListLines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, l := range lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return &models.CartResponse{
		CartID:         cartID,
		Lines:          lines,
		Total:          total,
		TotalFormatted: utils.FormatUSD(total),
	}, nil
}

func (s *CartService) LineImage(ctx context.Context, cartID string, lineID int64, variant snapshot.Variant, caption []string) ([]byte, error) {
	line, err := s.repository.GetLine(ctx, cartID, lineID)
	if err != nil {
		return nil, err
	}

	key := lineCacheKey(line)
	plain := len(caption) == 0
	if plain && s.cache != nil {
		if data, ok := s.cache.Get(key, variant); ok {
			return data, nil
		}
	}

	png, _, err := snapshot.DecodeDataURI(line.PreviewImage)
	if err != nil {
		return nil, fmt.Errorf("line %d preview: %w", lineID, err)
	}
	if !plain {
		if png, err = snapshot.Annotate(png, caption); err != nil {
			return nil, fmt.Errorf("failed to annotate preview: %w", err)
		}
	}
	data, err := snapshot.OptimizeImage(png, variant)
	if err != nil {
		return nil, err
	}

	if plain && s.cache != nil {
		if err := s.cache.Put(key, variant, data); err != nil {
			s.log.Warn("⚠️  Failed to cache line image", "lineId", lineID, "error", err)
		}
	}
	return data, nil
}

func (s *CartService) warm(ctx context.Context, line *models.CartLine) error {
	png, _, err := snapshot.DecodeDataURI(line.PreviewImage)
	if err != nil {
		return err
	}
	variants, err := snapshot.PreviewVariants(ctx, png)
	if err != nil {
		return err
	}
	key := lineCacheKey(line)
	for v, data := range variants {
		if err := s.cache.Put(key, v, data); err != nil {
			return err
		}
	}
	return nil
}

// lineCacheKey changes whenever the line's preview image is refreshed
func lineCacheKey(line *models.CartLine) string {
	return fmt.Sprintf("%s-%d-%d", line.CartID, line.ID, line.UpdatedAt.UnixNano())
}
