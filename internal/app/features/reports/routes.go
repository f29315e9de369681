// internal/app/features/reports/routes.go
package reports

import "github.com/go-chi/chi/v5"

// Routes wires the reporting endpoints. Mounted under /api/reports
// behind the signed-in middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/summary", h.ServeSummary)
	r.Get("/transactions.csv", h.ServeExport)
	return r
}
