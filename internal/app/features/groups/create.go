// internal/app/features/groups/create.go
package groups

import (
	"context"
	"net/http"

	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/sanitize"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreateGroup creates a group with the caller as its first member
// and admin.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}

	var req createGroupRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Engine.CreateGroup(ctx, uid, sanitize.Text(req.Name), sanitize.Text(req.Description))
	if err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("create group failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not create group")
		return
	}

	h.Audit.Event("group.create", uid.Hex(),
		zap.String("group_id", g.ID.Hex()),
		zap.String("name", g.Name))
	httpjson.Write(w, http.StatusCreated, map[string]any{"group": g})
}
