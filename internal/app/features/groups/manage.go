// internal/app/features/groups/manage.go
package groups

import (
	"context"
	"net/http"

	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/sanitize"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type updateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// HandleUpdateGroup changes the group's name and/or description. Omitted
// fields are left alone; the engine rejects blanking either one.
func (h *Handler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	var req updateGroupRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	if req.Name != nil {
		clean := sanitize.Text(*req.Name)
		req.Name = &clean
	}
	if req.Description != nil {
		clean := sanitize.Text(*req.Description)
		req.Description = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Engine.UpdateGroup(ctx, uid, gid, req.Name, req.Description)
	if err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("update group failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not update group")
		return
	}

	h.Audit.Event("group.update", uid.Hex(), zap.String("group_id", gid.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]any{"group": g})
}

// HandleDeleteGroup removes the group and detaches it from every member.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Engine.DeleteGroup(ctx, uid, gid); err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("delete group failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not delete group")
		return
	}

	h.Audit.Event("group.delete", uid.Hex(), zap.String("group_id", gid.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]any{"deleted": true})
}
