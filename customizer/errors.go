package customizer

import "fmt"

// UnknownKeyError is returned when a color edit targets a key the seeded design does not declare
type UnknownKeyError struct {
	DesignID string
	Key      string
}

func (e *UnknownKeyError) Error() string {
	if e.DesignID == "" {
		return fmt.Sprintf("attribute %q: no design seeded", e.Key)
	}
	return fmt.Sprintf("attribute %q is not declared by %s", e.Key, e.DesignID)
}

// InvalidColorError is returned when a color value is not a hex color
type InvalidColorError struct {
	Key   string
	Value string
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("attribute %q: %q is not a hex color", e.Key, e.Value)
}
