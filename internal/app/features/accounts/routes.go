// internal/app/features/accounts/routes.go
package accounts

import "github.com/go-chi/chi/v5"

// Routes returns the account endpoints, mounted under /api/accounts.
// Callers are expected to be signed in; fine-grained capability checks
// happen in the handlers.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/{accountID}", h.ServeGet)
	r.Put("/{accountID}", h.ServeUpdate)
	r.Post("/{accountID}/lock", h.ServeLock)
	r.Delete("/{accountID}", h.ServeDelete)
	return r
}
