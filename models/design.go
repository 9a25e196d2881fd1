package models

// DesignGroup is an ordered set of recolorable attribute keys shown together in the editor
type DesignGroup struct {
	Label string   `json:"label"`
	Keys  []string `json:"keys"`
}

// DesignDefinition describes a selectable design and its recolorable attributes
// Example: {"id": "Design 2", "groups": [{"label": "Main Fills", "keys": ["crossfill1"]}], "defaults": {"crossfill1": "#B3998E"}}
type DesignDefinition struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	Artwork  string            `json:"artwork"` // SVG template name under render assets
	Groups   []DesignGroup     `json:"groups"`
	Defaults map[string]string `json:"defaults"`
}

// Keys returns every declared attribute key in group order
func (d *DesignDefinition) Keys() []string {
	var keys []string
	for _, g := range d.Groups {
		keys = append(keys, g.Keys...)
	}
	return keys
}

// DesignSummary is the list view of a design
type DesignSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	KeyCount  int    `json:"keyCount"`
	HasGroups bool   `json:"hasGroups"`
}

// ColorGroupView is a color editor group with its open/closed state and current values
type ColorGroupView struct {
	Label      string           `json:"label"`
	Open       bool             `json:"open"`
	Attributes []ColorAttribute `json:"attributes"`
}

// ColorAttribute is a single editable color with its display label
type ColorAttribute struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// DesignDetail is the full view of one design for the color editor
type DesignDetail struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Groups      []DesignGroup     `json:"groups"`
	Defaults    map[string]string `json:"defaults"`
	AspectRatio float64           `json:"aspectRatio"`
}
