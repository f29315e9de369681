// internal/app/features/transactions/routes.go
package transactions

import "github.com/go-chi/chi/v5"

// Routes wires the transaction endpoints. The router is mounted under
// /api/transactions behind the signed-in middleware; capability checks
// happen in the ledger service.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/{txID}", h.ServeGet)
	r.Post("/{txID}/approve", h.ServeApprove)
	r.Post("/{txID}/reject", h.ServeReject)
	return r
}
