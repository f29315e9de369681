// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes wires the user administration endpoints. Mounted under
// /api/users behind the signed-in middleware; every endpoint here
// additionally requires the admin role.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Put("/{userID}/role", h.ServeSetRole)
	return r
}
