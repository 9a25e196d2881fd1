package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"whosoever-apparel/logger"
	"whosoever-apparel/models"
	"whosoever-apparel/utils"
)

//go:embed designs.json
var defaultDesigns []byte

// NotFoundError is returned when a design id is not in the registry.
// Callers treat it as "no design selected".
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// RegistryConfig is the on-disk shape of the design registry
type RegistryConfig struct {
	NeutralColor string                    `json:"neutralColor"`
	Designs      []models.DesignDefinition `json:"designs"`
}

// Registry is the immutable catalog of selectable designs
type Registry struct {
	order        []string
	designs      map[string]*models.DesignDefinition
	neutralColor string
}

// Load builds the registry from configPath, or from the embedded designs when configPath is empty
func Load(configPath string, log *logger.Logger) (*Registry, error) {
	data := defaultDesigns
	source := "embedded designs.json"

	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
			configPath = filepath.Join(wd, configPath)
		}

		raw, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read design registry: %w", err)
		}
		data = raw
		source = configPath
	}

	reg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if log != nil {
		log.Info("✅ Design registry loaded", "source", source, "designs", len(reg.order))
	}
	return reg, nil
}

// Parse builds a registry from JSON
func Parse(data []byte) (*Registry, error) {
	var config RegistryConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse design registry: %w", err)
	}
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid design registry: %w", err)
	}

	reg := &Registry{
		designs:      make(map[string]*models.DesignDefinition, len(config.Designs)),
		neutralColor: utils.NeutralColor,
	}
	if config.NeutralColor != "" {
		reg.neutralColor, _ = utils.NormalizeHex(config.NeutralColor)
	}

	for i := range config.Designs {
		def := config.Designs[i]
		normalized := make(map[string]string, len(def.Defaults))
		for key, value := range def.Defaults {
			hex, _ := utils.NormalizeHex(value)
			normalized[key] = hex
		}
		def.Defaults = normalized
		if def.Groups == nil {
			def.Groups = []models.DesignGroup{}
		}
		reg.order = append(reg.order, def.ID)
		reg.designs[def.ID] = &def
	}
	return reg, nil
}

func validateConfig(config *RegistryConfig) error {
	if len(config.Designs) == 0 {
		return fmt.Errorf("designs are required")
	}
	if config.NeutralColor != "" && !utils.IsHexColor(config.NeutralColor) {
		return fmt.Errorf("neutralColor %q is not a hex color", config.NeutralColor)
	}

	seen := make(map[string]bool, len(config.Designs))
	for _, def := range config.Designs {
		id := strings.TrimSpace(def.ID)
		if id == "" {
			return fmt.Errorf("design id is required")
		}
		if seen[id] {
			return fmt.Errorf("duplicate design id %q", id)
		}
		seen[id] = true

		if def.Artwork == "" {
			return fmt.Errorf("design %q: artwork is required", id)
		}

		declared := make(map[string]bool)
		for _, g := range def.Groups {
			if strings.TrimSpace(g.Label) == "" {
				return fmt.Errorf("design %q: group label is required", id)
			}
			for _, key := range g.Keys {
				if declared[key] {
					return fmt.Errorf("design %q: key %q declared twice", id, key)
				}
				declared[key] = true
			}
		}

		for key, value := range def.Defaults {
			if !declared[key] {
				return fmt.Errorf("design %q: default for undeclared key %q", id, key)
			}
			if !utils.IsHexColor(value) {
				return fmt.Errorf("design %q: default %s=%q is not a hex color", id, key, value)
			}
		}
	}
	return nil
}

// Lookup returns a copy of the design definition for designID.
// Changing the copy never affects the registry.
func (r *Registry) Lookup(designID string) (*models.DesignDefinition, error) {
	def, err := r.lookup(designID)
	if err != nil {
		return nil, err
	}
	return cloneDefinition(def), nil
}

func (r *Registry) lookup(designID string) (*models.DesignDefinition, error) {
	def, ok := r.designs[designID]
	if !ok {
		return nil, &NotFoundError{Kind: "design", ID: designID}
	}
	return def, nil
}

func cloneDefinition(def *models.DesignDefinition) *models.DesignDefinition {
	clone := *def
	clone.Groups = make([]models.DesignGroup, len(def.Groups))
	for i, g := range def.Groups {
		clone.Groups[i] = models.DesignGroup{Label: g.Label, Keys: append([]string(nil), g.Keys...)}
	}
	clone.Defaults = make(map[string]string, len(def.Defaults))
	for k, v := range def.Defaults {
		clone.Defaults[k] = v
	}
	return &clone
}

// ListGroups returns the design's groups in declaration order
func (r *Registry) ListGroups(designID string) ([]models.DesignGroup, error) {
	def, err := r.lookup(designID)
	if err != nil {
		return nil, err
	}
	groups := make([]models.DesignGroup, len(def.Groups))
	for i, g := range def.Groups {
		groups[i] = models.DesignGroup{Label: g.Label, Keys: append([]string(nil), g.Keys...)}
	}
	return groups, nil
}

// DefaultsFor returns a fresh key->color map covering every declared key.
// Keys without a declared default get the neutral color.
func (r *Registry) DefaultsFor(designID string) (map[string]string, error) {
	def, err := r.lookup(designID)
	if err != nil {
		return nil, err
	}
	defaults := make(map[string]string)
	for _, key := range def.Keys() {
		if value, ok := def.Defaults[key]; ok {
			defaults[key] = value
		} else {
			defaults[key] = r.neutralColor
		}
	}
	return defaults, nil
}

// IDs lists design ids in declaration order
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Summaries lists every design for the design picker
func (r *Registry) Summaries() []models.DesignSummary {
	summaries := make([]models.DesignSummary, 0, len(r.order))
	for _, id := range r.order {
		def := r.designs[id]
		summaries = append(summaries, models.DesignSummary{
			ID:        def.ID,
			Name:      def.Name,
			KeyCount:  len(def.Keys()),
			HasGroups: len(def.Groups) > 0,
		})
	}
	return summaries
}

// NeutralColor is the fallback color for keys without defaults
func (r *Registry) NeutralColor() string {
	return r.neutralColor
}
