package garment

import (
	"context"
	"encoding/json"
	"fmt"

	"whosoever-apparel/logger"
	"whosoever-apparel/models"
	"whosoever-apparel/store"
)

// SelectedGarmentKey prefixes the store key of a client's last selected garment
const SelectedGarmentKey = "selectedGarment"

// PreferenceKey is the store key for one client: selectedGarment:<clientId>
func PreferenceKey(clientID string) string {
	return SelectedGarmentKey + ":" + clientID
}

// Preferences remembers the last selected garment of each client across sessions.
// Calls without a client id neither read nor write anything.
type Preferences struct {
	store store.KeyValueStore
	log   *logger.Logger
}

func NewPreferences(kv store.KeyValueStore, log *logger.Logger) *Preferences {
	if log == nil {
		log = logger.Nop()
	}
	return &Preferences{store: kv, log: log.With("service", "GarmentPreferences")}
}

// Load returns the client's persisted selection, nil when none was saved.
// Unreadable values are logged and ignored.
func (p *Preferences) Load(ctx context.Context, clientID string) (*models.GarmentSelection, error) {
	if clientID == "" {
		return nil, nil
	}
	raw, ok, err := p.store.Get(ctx, PreferenceKey(clientID))
	if err != nil {
		return nil, fmt.Errorf("failed to read garment preference: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var sel models.GarmentSelection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		p.log.Warn("⚠️  Ignoring unreadable garment preference", "error", err)
		return nil, nil
	}
	normalized, err := NewSelection(sel.GarmentID, sel.BaseColor)
	if err != nil {
		p.log.Warn("⚠️  Ignoring invalid garment preference", "error", err)
		return nil, nil
	}
	return &normalized, nil
}

// Save overwrites the client's persisted selection
func (p *Preferences) Save(ctx context.Context, clientID string, sel models.GarmentSelection) error {
	if clientID == "" {
		return nil
	}
	raw, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, PreferenceKey(clientID), string(raw)); err != nil {
		return fmt.Errorf("failed to save garment preference: %w", err)
	}
	return nil
}
