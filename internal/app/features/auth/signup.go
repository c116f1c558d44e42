// internal/app/features/auth/signup.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/studycircle/studycircle/internal/app/store/users"
	sessionauth "github.com/studycircle/studycircle/internal/app/system/auth"
	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/normalize"
	"github.com/studycircle/studycircle/internal/app/system/sanitize"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"github.com/studycircle/studycircle/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

const minPasswordLen = 6

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleSignup creates an account and signs the new user in.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	email := normalize.Email(req.Email)
	name := sanitize.Text(normalize.Name(req.Name))
	if email == "" || !strings.Contains(email, "@") {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_email", "a valid email is required")
		return
	}
	if name == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "name_required", "name is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.WriteError(w, http.StatusBadRequest, "weak_password", "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not create account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Accounts.Create(ctx, models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.WriteError(w, http.StatusConflict, "duplicate_email", "an account with this email already exists")
			return
		}
		h.Log.Error("create account failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not create account")
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

	h.Audit.Event("account.signup", u.ID.Hex(), zap.String("email", u.Email))
	httpjson.Write(w, http.StatusCreated, map[string]any{"user": u})
}
