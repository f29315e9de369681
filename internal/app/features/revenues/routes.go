// internal/app/features/revenues/routes.go
package revenues

import "github.com/go-chi/chi/v5"

// Routes wires the revenue source endpoints. Mounted under
// /api/revenues behind the signed-in middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Delete("/{revenueID}", h.ServeDelete)
	return r
}
