package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"whosoever-apparel/customizer"
	"whosoever-apparel/logger"
	"whosoever-apparel/registry"
	"whosoever-apparel/repository"
	"whosoever-apparel/service"
	"whosoever-apparel/snapshot"
)

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error string `json:"error"`
	Retry bool   `json:"retry,omitempty"`
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("❌ Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to status codes. Nothing here is fatal to the process.
func writeError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var ce *snapshot.CaptureError
	if errors.As(err, &ce) {
		body.Retry = true
	}

	if status >= http.StatusInternalServerError {
		log.Error("❌ "+op+" failed", "error", err)
	} else {
		log.Warn("⚠️  "+op+" rejected", "status", status, "error", err)
	}
	writeJSON(w, log, status, body)
}

func statusFor(err error) int {
	var (
		notFound     *registry.NotFoundError
		lineNotFound *repository.LineNotFoundError
		unknownKey   *customizer.UnknownKeyError
		invalidColor *customizer.InvalidColorError
		validation   *service.ValidationError
		transition   *service.TransitionError
		capture      *snapshot.CaptureError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &lineNotFound):
		return http.StatusNotFound
	case errors.As(err, &unknownKey), errors.As(err, &invalidColor), errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &transition), errors.As(err, &capture):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON request body into v; an empty body leaves v untouched
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &service.ValidationError{Field: "body", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// pathSegments splits the escaped path after prefix and unescapes each segment,
// so ids containing "/" survive as %2F
func pathSegments(r *http.Request, prefix string) ([]string, error) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.EscapedPath(), prefix), "/")
	if rest == "" {
		return nil, nil
	}
	raw := strings.Split(rest, "/")
	segments := make([]string, len(raw))
	for i, s := range raw {
		decoded, err := url.PathUnescape(s)
		if err != nil {
			return nil, &service.ValidationError{Field: "path", Reason: err.Error()}
		}
		segments[i] = decoded
	}
	return segments, nil
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
