package router

import (
	"net/http"
	"strings"

	"whosoever-apparel/app/controller"
)

type Controllers struct {
	Design  *controller.DesignController
	Session *controller.SessionController
	Cart    *controller.CartController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Design registry and garment outlines
	mux.HandleFunc("/designs", controllers.Design.ListDesigns)
	mux.HandleFunc("/designs/", controllers.Design.GetDesign)
	mux.HandleFunc("/garments", controllers.Design.ListGarments)

	// Create a session
	mux.HandleFunc("/sessions", controllers.Session.CreateSession)

	// Session actions, dispatched on the path after the session id
	mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.EscapedPath(), "/sessions/"), "/")
		id, action, _ := strings.Cut(path, "/")
		if id == "" {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		switch {
		case action == "":
			if r.Method == http.MethodDelete {
				controllers.Session.CloseSession(w, r)
				return
			}
			controllers.Session.GetSession(w, r)
		case action == "garment":
			controllers.Session.SelectGarment(w, r)
		case action == "design":
			controllers.Session.SelectDesign(w, r)
		case action == "placement":
			controllers.Session.UpdatePlacement(w, r)
		case action == "nudge":
			controllers.Session.Nudge(w, r)
		case action == "drag":
			controllers.Session.Drag(w, r)
		case strings.HasPrefix(action, "colors/"):
			controllers.Session.SetColor(w, r)
		case strings.HasPrefix(action, "groups/") && strings.HasSuffix(action, "/toggle"):
			controllers.Session.ToggleGroup(w, r)
		case action == "click":
			controllers.Session.Click(w, r)
		case action == "surface":
			controllers.Session.SetSurface(w, r)
		case action == "preview":
			controllers.Session.Preview(w, r)
		case action == "capture":
			controllers.Session.Capture(w, r)
		case action == "export":
			controllers.Session.Export(w, r)
		case action == "cart":
			controllers.Session.AddToCart(w, r)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})

	// Carts
	mux.HandleFunc("/carts/", controllers.Cart.GetCart)

	// Optimized line preview for fulfillment
	mux.HandleFunc("/admin/carts/", controllers.Cart.GetLineImage)
}
