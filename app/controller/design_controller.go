package controller

import (
	"net/http"

	"whosoever-apparel/logger"
	"whosoever-apparel/service"
)

// DesignController handles HTTP requests for the design registry and garment outlines
type DesignController struct {
	service service.CustomizerServiceInterface
	log     *logger.Logger
}

// NewDesignController creates a new DesignController
func NewDesignController(svc service.CustomizerServiceInterface, log *logger.Logger) *DesignController {
	return &DesignController{service: svc, log: log.With("controller", "DesignController")}
}

// ListDesigns handles GET /designs
func (c *DesignController) ListDesigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, c.log, http.StatusOK, c.service.ListDesigns())
}

// GetDesign handles GET /designs/{id}
func (c *DesignController) GetDesign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	segments, err := pathSegments(r, "/designs/")
	if err != nil {
		writeError(w, c.log, "GetDesign", err)
		return
	}
	if len(segments) != 1 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	detail, err := c.service.GetDesign(segments[0])
	if err != nil {
		writeError(w, c.log, "GetDesign", err)
		return
	}
	writeJSON(w, c.log, http.StatusOK, detail)
}

// ListGarments handles GET /garments
func (c *DesignController) ListGarments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, c.log, http.StatusOK, c.service.ListGarments())
}
