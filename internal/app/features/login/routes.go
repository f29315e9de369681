// internal/app/features/login/routes.go
package login

import (
	"github.com/go-chi/chi/v5"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.ServeLogin)
	r.Post("/logout", h.ServeLogout)
	r.With(auth.RequireSignedIn).Get("/me", h.ServeMe)
	return r
}
