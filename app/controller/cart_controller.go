package controller

import (
	"net/http"
	"strconv"

	"whosoever-apparel/logger"
	"whosoever-apparel/service"
	"whosoever-apparel/snapshot"
)

// CartController handles HTTP requests for carts and their line previews
type CartController struct {
	service service.CartServiceInterface
	log     *logger.Logger
}

// NewCartController creates a new CartController
func NewCartController(svc service.CartServiceInterface, log *logger.Logger) *CartController {
	return &CartController{service: svc, log: log.With("controller", "CartController")}
}

// GetCart handles GET /carts/{cartId}
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	segments, err := pathSegments(r, "/carts/")
	if err != nil {
		writeError(w, c.log, "GetCart", err)
		return
	}
	if len(segments) != 1 {
		http.Error(w, "cart id is required", http.StatusBadRequest)
		return
	}

	cart, err := c.service.GetCart(r.Context(), segments[0])
	if err != nil {
		writeError(w, c.log, "GetCart", err)
		return
	}
	writeJSON(w, c.log, http.StatusOK, cart)
}

// GetLineImage handles GET /admin/carts/{cartId}/lines/{lineId}/image?size=thumb|medium
// Optional customer and device query params are drawn as a caption under the image.
func (c *CartController) GetLineImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	segments, err := pathSegments(r, "/admin/carts/")
	if err != nil {
		writeError(w, c.log, "GetLineImage", err)
		return
	}
	if len(segments) != 4 || segments[1] != "lines" || segments[3] != "image" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	lineID, err := strconv.ParseInt(segments[2], 10, 64)
	if err != nil {
		http.Error(w, "line id must be a number", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	variant, err := snapshot.ParseVariant(query.Get("size"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var caption []string
	if customer := query.Get("customer"); customer != "" {
		caption = append(caption, "Customer: "+customer)
	}
	if device := query.Get("device"); device != "" {
		caption = append(caption, "Device: "+device)
	}

	data, err := c.service.LineImage(r.Context(), segments[0], lineID, variant, caption)
	if err != nil {
		writeError(w, c.log, "GetLineImage", err)
		return
	}

	c.log.Debug("✓ Serving line image", "cartId", segments[0], "lineId", lineID, "size", variant, "bytes", len(data))
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
