// internal/app/features/users/me.go
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
	"go.uber.org/zap"
)

// ServeMe returns the signed-in user's record with their groups resolved.
// A group id that no longer resolves is skipped; the reconcile pass
// cleans those up.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, membership.ErrUserNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "user_not_found", "account no longer exists")
			return
		}
		h.Log.Error("load profile failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not load profile")
		return
	}

	groups := make([]models.Group, 0, len(u.MemberOf))
	for _, gid := range u.MemberOf {
		g, err := h.Groups.GetByID(ctx, gid)
		if err != nil {
			if errors.Is(err, membership.ErrGroupNotFound) {
				h.Log.Warn("member_of references missing group",
					zap.String("user_id", uid.Hex()),
					zap.String("group_id", gid.Hex()))
				continue
			}
			h.Log.Error("resolve group failed", zap.Error(err))
			httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not load groups")
			return
		}
		groups = append(groups, g)
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"user":   u,
		"groups": groups,
	})
}
