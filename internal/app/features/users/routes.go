// internal/app/features/users/routes.go
package users

import (
	"github.com/studycircle/studycircle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/me", h.ServeMe)
		pr.Put("/profile", h.HandleUpdateProfile)

		// Platform admins only; enforced in the handler.
		pr.Put("/{id}/role", h.HandleUpdateRole)
	})

	return r
}
