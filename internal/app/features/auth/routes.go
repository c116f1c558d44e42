// internal/app/features/auth/routes.go
package auth

import (
	"time"

	"github.com/studycircle/studycircle/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Credential endpoints are throttled per client IP.
	limiter := ratelimit.New(10, time.Minute)
	r.Group(func(lr chi.Router) {
		lr.Use(limiter.Middleware)
		lr.Post("/signup", h.HandleSignup)
		lr.Post("/login", h.HandleLogin)
	})

	r.Post("/logout", h.HandleLogout)
	return r
}
