// internal/app/features/users/role.go
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/studycircle/studycircle/internal/app/membership"
	"github.com/studycircle/studycircle/internal/app/system/authz"
	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"github.com/studycircle/studycircle/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type updateRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole sets another user's platform role. Platform admins
// only; this is unrelated to per-group admin sets.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	role, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	if role != models.RoleAdmin {
		httpjson.WriteError(w, http.StatusForbidden, "forbidden", "platform admin role required")
		return
	}

	target, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_id", "invalid user id")
		return
	}

	var req updateRoleRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_role", "role must be user or admin")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateRole(ctx, target, req.Role); err != nil {
		if errors.Is(err, membership.ErrUserNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "user_not_found", "no such user")
			return
		}
		h.Log.Error("update role failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not update role")
		return
	}

	h.Audit.Event("account.update_role", uid.Hex(),
		zap.String("target_id", target.Hex()),
		zap.String("role", req.Role))
	httpjson.Write(w, http.StatusOK, map[string]any{"updated": true})
}
