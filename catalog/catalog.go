package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"whosoever-apparel/logger"
	"whosoever-apparel/models"
)

//go:embed products.json
var defaultProducts []byte

// CatalogConfig represents the catalog configuration structure
type CatalogConfig struct {
	Currency string           `json:"currency"`
	Products []models.Product `json:"products"`
}

// Catalog resolves the product a garment is sold as
type Catalog struct {
	currency  string
	byGarment map[string]models.Product
	order     []string
}

// Load reads the catalog from configPath, or the embedded products.json when configPath is empty
func Load(configPath string, log *logger.Logger) (*Catalog, error) {
	data := defaultProducts
	source := "embedded products.json"

	if configPath != "" {
		// Resolve config path
		if !filepath.IsAbs(configPath) {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
			configPath = filepath.Join(wd, configPath)
		}
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog config: %w", err)
		}
		data = raw
		source = configPath
	}

	var config CatalogConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse catalog config: %w", err)
	}
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid catalog config: %w", err)
	}

	c := &Catalog{
		currency:  config.Currency,
		byGarment: make(map[string]models.Product, len(config.Products)),
	}
	for _, p := range config.Products {
		c.byGarment[p.GarmentID] = p
		c.order = append(c.order, p.GarmentID)
	}

	if log != nil {
		log.Info("✅ Catalog loaded", "source", source, "products", len(c.order))
	}
	return c, nil
}

func validateConfig(config *CatalogConfig) error {
	if config.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if len(config.Products) == 0 {
		return fmt.Errorf("products are required")
	}
	seen := make(map[string]bool)
	for _, p := range config.Products {
		if strings.TrimSpace(p.ProductID) == "" {
			return fmt.Errorf("productId is required")
		}
		if strings.TrimSpace(p.GarmentID) == "" {
			return fmt.Errorf("product %s: garmentId is required", p.ProductID)
		}
		if seen[p.GarmentID] {
			return fmt.Errorf("garment %s listed twice", p.GarmentID)
		}
		seen[p.GarmentID] = true
		if p.UnitPrice < 0 {
			return fmt.Errorf("product %s: unitPrice cannot be negative", p.ProductID)
		}
	}
	return nil
}

// ProductFor returns the product for a garment id
func (c *Catalog) ProductFor(garmentID string) (models.Product, bool) {
	p, ok := c.byGarment[garmentID]
	return p, ok
}

// Products lists products in configuration order
func (c *Catalog) Products() []models.Product {
	products := make([]models.Product, 0, len(c.order))
	for _, id := range c.order {
		products = append(products, c.byGarment[id])
	}
	return products
}

// Currency returns the ISO currency code of unit prices
func (c *Catalog) Currency() string {
	return c.currency
}
