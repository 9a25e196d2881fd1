package customizer

import (
	"sort"

	"whosoever-apparel/models"
	"whosoever-apparel/utils"
)

// AttributeKey is a recolorable attribute declared by the seeded design
type AttributeKey string

// ColorOverrides is the per-session color assignment for one design.
// Only keys declared by the seeded design can be written.
type ColorOverrides struct {
	designID string
	groups   []models.DesignGroup
	declared map[AttributeKey]bool
	colors   map[AttributeKey]string
	open     string
}

// NewColorOverrides returns an empty, unseeded override set
func NewColorOverrides() *ColorOverrides {
	return &ColorOverrides{
		declared: map[AttributeKey]bool{},
		colors:   map[AttributeKey]string{},
	}
}

// Seed replaces the whole set with the design's defaults; nothing from a previous design survives.
// defaults must cover every declared key (registry.DefaultsFor guarantees it).
func (c *ColorOverrides) Seed(def *models.DesignDefinition, defaults map[string]string) {
	c.designID = def.ID
	c.groups = make([]models.DesignGroup, len(def.Groups))
	c.declared = make(map[AttributeKey]bool)
	c.colors = make(map[AttributeKey]string)
	c.open = ""

	for i, g := range def.Groups {
		c.groups[i] = models.DesignGroup{Label: g.Label, Keys: append([]string(nil), g.Keys...)}
		for _, key := range g.Keys {
			k := AttributeKey(key)
			c.declared[k] = true
			value, ok := defaults[key]
			if !ok {
				value = utils.NeutralColor
			}
			c.colors[k] = value
		}
	}
}

// Clear drops the seeded design (no design selected)
func (c *ColorOverrides) Clear() {
	c.designID = ""
	c.groups = nil
	c.declared = map[AttributeKey]bool{}
	c.colors = map[AttributeKey]string{}
	c.open = ""
}

// DesignID is the id of the seeded design, "" when none
func (c *ColorOverrides) DesignID() string {
	return c.designID
}

// Key validates a raw key against the seeded design
func (c *ColorOverrides) Key(raw string) (AttributeKey, error) {
	k := AttributeKey(raw)
	if !c.declared[k] {
		return "", &UnknownKeyError{DesignID: c.designID, Key: raw}
	}
	return k, nil
}

// SetColor overrides one attribute. Unknown keys and invalid colors are rejected without any change.
func (c *ColorOverrides) SetColor(key, value string) error {
	k, err := c.Key(key)
	if err != nil {
		return err
	}
	hex, err := utils.NormalizeHex(value)
	if err != nil {
		return &InvalidColorError{Key: key, Value: value}
	}
	c.colors[k] = hex
	return nil
}

// CurrentColors returns a complete copy of the key->color mapping
func (c *ColorOverrides) CurrentColors() map[string]string {
	out := make(map[string]string, len(c.colors))
	for k, v := range c.colors {
		out[string(k)] = v
	}
	return out
}

// Keys returns the declared keys sorted by name
func (c *ColorOverrides) Keys() []string {
	keys := make([]string, 0, len(c.declared))
	for k := range c.declared {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// ToggleGroup opens label and closes every other group; toggling the open group closes it.
// Unknown labels are ignored.
func (c *ColorOverrides) ToggleGroup(label string) bool {
	found := false
	for _, g := range c.groups {
		if g.Label == label {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if c.open == label {
		c.open = ""
	} else {
		c.open = label
	}
	return true
}

// OpenGroup is the label of the open group, "" when all are closed
func (c *ColorOverrides) OpenGroup() string {
	return c.open
}

// Groups mirrors the registry group order with open state and current values
func (c *ColorOverrides) Groups() []models.ColorGroupView {
	views := make([]models.ColorGroupView, 0, len(c.groups))
	for _, g := range c.groups {
		view := models.ColorGroupView{Label: g.Label, Open: g.Label == c.open}
		for _, key := range g.Keys {
			view.Attributes = append(view.Attributes, models.ColorAttribute{
				Key:   key,
				Label: utils.FormatAttributeLabel(key),
				Value: c.colors[AttributeKey(key)],
			})
		}
		views = append(views, view)
	}
	return views
}
