package snapshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png"
	"strings"
	"time"
)

const pngMime = "image/png"

// ImagePayload is a frozen, self-contained snapshot: a data URI with no external references
type ImagePayload struct {
	DataURI    string    `json:"dataUri"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CapturedAt time.Time `json:"capturedAt"`
}

// NewPNGPayload wraps encoded PNG bytes, reading the dimensions from the image header
func NewPNGPayload(data []byte, capturedAt time.Time) (*ImagePayload, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if format != "png" {
		return nil, fmt.Errorf("snapshot is %s, want png", format)
	}
	return &ImagePayload{
		DataURI:    "data:" + pngMime + ";base64," + base64.StdEncoding.EncodeToString(data),
		Width:      cfg.Width,
		Height:     cfg.Height,
		CapturedAt: capturedAt,
	}, nil
}

// Bytes decodes the PNG back out of the data URI
func (p *ImagePayload) Bytes() ([]byte, error) {
	data, _, err := DecodeDataURI(p.DataURI)
	return data, err
}

// DecodeDataURI splits a base64 data URI into its bytes and mime type
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URI")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	return data, strings.TrimSuffix(meta, ";base64"), nil
}
