// internal/app/features/funds/routes.go
package funds

import "github.com/go-chi/chi/v5"

// Routes wires the fund endpoints. Mounted under /api/funds behind the
// signed-in middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/{fundID}/budget", h.ServeBudget)
	r.Put("/{fundID}/budget", h.ServeUpdateBudget)
	r.Delete("/{fundID}", h.ServeDelete)
	return r
}
