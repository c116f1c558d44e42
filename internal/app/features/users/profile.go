// internal/app/features/users/profile.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/studycircle/studycircle/internal/app/membership"
	userstore "github.com/studycircle/studycircle/internal/app/store/users"
	"github.com/studycircle/studycircle/internal/app/system/authz"
	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/normalize"
	"github.com/studycircle/studycircle/internal/app/system/sanitize"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost     = 12
	minPasswordLen = 6
)

type updateProfileRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// HandleUpdateProfile applies a partial update to the caller's own
// account. Omitted fields are left alone.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req updateProfileRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	var upd userstore.ProfileUpdate
	if req.Email != nil {
		email := normalize.Email(*req.Email)
		if email == "" || !strings.Contains(email, "@") {
			httpjson.WriteError(w, http.StatusBadRequest, "invalid_email", "a valid email is required")
			return
		}
		upd.Email = &email
	}
	if req.Name != nil {
		name := sanitize.Text(normalize.Name(*req.Name))
		if name == "" {
			httpjson.WriteError(w, http.StatusBadRequest, "name_required", "name must not be empty")
			return
		}
		upd.Name = &name
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			httpjson.WriteError(w, http.StatusBadRequest, "weak_password", "password must be at least 6 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			h.Log.Error("password hash failed", zap.Error(err))
			httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not update profile")
			return
		}
		hs := string(hash)
		upd.PasswordHash = &hs
	}
	if upd.Email == nil && upd.Name == nil && upd.PasswordHash == nil {
		httpjson.WriteError(w, http.StatusBadRequest, "empty_update", "provide at least one of email, name, password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, uid, upd); err != nil {
		switch {
		case errors.Is(err, membership.ErrUserNotFound):
			httpjson.WriteError(w, http.StatusNotFound, "user_not_found", "account no longer exists")
		case errors.Is(err, userstore.ErrDuplicateEmail):
			httpjson.WriteError(w, http.StatusConflict, "duplicate_email", "an account with this email already exists")
		default:
			h.Log.Error("update profile failed", zap.Error(err))
			httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not update profile")
		}
		return
	}

	h.Audit.Event("account.update_profile", uid.Hex())
	httpjson.Write(w, http.StatusOK, map[string]any{"updated": true})
}
