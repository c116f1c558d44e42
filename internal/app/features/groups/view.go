// internal/app/features/groups/view.go
package groups

import (
	"context"
	"net/http"

	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type memberInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

// ServeGroupView returns one group with its member roster resolved to
// names and emails.
func (h *Handler) ServeGroupView(w http.ResponseWriter, r *http.Request) {
	gid, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Engine.GetGroup(ctx, gid)
	if err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("get group failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not load group")
		return
	}

	users, err := h.Users.GetManyByID(ctx, g.Members)
	if err != nil {
		h.Log.Error("resolve members failed",
			zap.String("group_id", gid.Hex()),
			zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not load group members")
		return
	}

	members := make([]memberInfo, 0, len(users))
	for _, u := range users {
		members = append(members, memberInfo{
			ID:    u.ID.Hex(),
			Name:  u.Name,
			Email: u.Email,
			Admin: g.HasAdmin(u.ID),
		})
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"group":   g,
		"members": members,
	})
}
