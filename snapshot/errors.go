package snapshot

import "fmt"

// CaptureError means no usable image was produced. Callers must not build a cart line from it.
// Stale is set when the session changed while the capture was running.
type CaptureError struct {
	Reason string
	Stale  bool
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture failed: %s: %v", e.Reason, e.Err)
	}
	return "capture failed: " + e.Reason
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
