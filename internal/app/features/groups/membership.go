// internal/app/features/groups/membership.go
package groups

import (
	"context"
	"net/http"

	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleJoinGroup adds the caller to the group's members.
func (h *Handler) HandleJoinGroup(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Engine.JoinGroup(ctx, uid, gid)
	if err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("join group failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not join group")
		return
	}

	h.Audit.Event("group.join", uid.Hex(), zap.String("group_id", gid.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]any{"group": g})
}

// HandleLeaveGroup removes the caller from the group. Leaving as the sole
// admin promotes the longest-tenured remaining member; leaving as the
// last member deletes the group.
func (h *Handler) HandleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Engine.LeaveGroup(ctx, uid, gid); err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("leave group failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not leave group")
		return
	}

	h.Audit.Event("group.leave", uid.Hex(), zap.String("group_id", gid.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]any{"left": true})
}
