// internal/app/features/groups/routes.go
package groups

import (
	"github.com/studycircle/studycircle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /api/groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// CREATE / LIST
		pr.Post("/", h.HandleCreateGroup)
		pr.Get("/", h.ServeGroupsList)

		// DISCOVERY
		pr.Get("/search", h.ServeGroupSearch)
		pr.Get("/available", h.ServeAvailableGroups)

		// VIEW
		pr.Get("/{id}", h.ServeGroupView)

		// SELF-SERVICE MEMBERSHIP
		pr.Post("/{id}/join", h.HandleJoinGroup)
		pr.Post("/{id}/leave", h.HandleLeaveGroup)

		// MANAGE (group admins only; the engine enforces that)
		pr.Patch("/{id}", h.HandleUpdateGroup)
		pr.Delete("/{id}", h.HandleDeleteGroup)
		pr.Post("/{id}/promote", h.HandlePromoteMember)
		pr.Post("/{id}/demote", h.HandleDemoteMember)
		pr.Delete("/{id}/members/{memberID}", h.HandleRemoveMember)
	})

	return r
}
