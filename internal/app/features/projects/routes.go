// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

// Routes wires the project endpoints. Mounted under /api/projects
// behind the signed-in middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/{projectID}", h.ServeGet)
	r.Put("/{projectID}", h.ServeUpdate)
	r.Post("/{projectID}/members", h.ServeAddMember)
	r.Put("/{projectID}/members/{userID}", h.ServeSetMemberRole)
	r.Delete("/{projectID}/members/{userID}", h.ServeRemoveMember)
	return r
}
