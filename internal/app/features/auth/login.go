// internal/app/features/auth/login.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/studycircle/studycircle/internal/app/membership"
	sessionauth "github.com/studycircle/studycircle/internal/app/system/auth"
	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/normalize"
	"github.com/studycircle/studycircle/internal/app/system/ratelimit"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and establishes a session. Unknown
// email and wrong password produce the same response.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Accounts.GetByEmail(ctx, normalize.Email(req.Email))
	if err != nil {
		if errors.Is(err, membership.ErrUserNotFound) {
			httpjson.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
			return
		}
		h.Log.Error("login lookup failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not log in")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		httpjson.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
		return
	}

	if err := h.Sessions.SignIn(w, r, &sessionauth.SessionUser{
		ID:    u.ID.Hex(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}); err != nil {
		h.Log.Error("session save failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not establish session")
		return
	}

	h.Audit.Event("account.login", u.ID.Hex(),
		zap.String("email", u.Email),
		zap.String("ip", ratelimit.ClientIP(r)))
	httpjson.Write(w, http.StatusOK, map[string]any{"user": u})
}

// HandleLogout clears the caller's session. Logging out while not signed
// in is not an error.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Error("session clear failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not log out")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"logged_out": true})
}
