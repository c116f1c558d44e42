// internal/app/features/groups/roles.go
package groups

import (
	"context"
	"net/http"

	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memberTargetRequest struct {
	MemberID string `json:"member_id"`
}

func (h *Handler) targetFromBody(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	var req memberTargetRequest
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return primitive.NilObjectID, false
	}
	target, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_id", "invalid member id")
		return primitive.NilObjectID, false
	}
	return target, true
}

// HandlePromoteMember adds a member to the group's admin set.
func (h *Handler) HandlePromoteMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	target, ok := h.targetFromBody(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Engine.PromoteMember(ctx, uid, gid, target)
	if err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("promote member failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not promote member")
		return
	}

	h.Audit.Event("group.promote", uid.Hex(),
		zap.String("group_id", gid.Hex()),
		zap.String("member_id", target.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]any{"group": g})
}

// HandleDemoteMember removes a member from the group's admin set.
func (h *Handler) HandleDemoteMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	target, ok := h.targetFromBody(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Engine.DemoteMember(ctx, uid, gid, target)
	if err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("demote member failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not demote member")
		return
	}

	h.Audit.Event("group.demote", uid.Hex(),
		zap.String("group_id", gid.Hex()),
		zap.String("member_id", target.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]any{"group": g})
}

// HandleRemoveMember kicks a member out of the group. The same last-admin
// and last-member rules as leaving apply.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	gid, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	target, ok := objectIDParam(w, r, "memberID", "invalid member id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Engine.RemoveMember(ctx, uid, gid, target); err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("remove member failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not remove member")
		return
	}

	h.Audit.Event("group.remove_member", uid.Hex(),
		zap.String("group_id", gid.Hex()),
		zap.String("member_id", target.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]any{"removed": true})
}
