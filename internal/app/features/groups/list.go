// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"
	"strings"

	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/studycircle/studycircle/internal/app/system/paging"
	"github.com/studycircle/studycircle/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeGroupsList returns a page of all groups.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := h.Engine.ListGroups(ctx, page.Skip(), page.Limit())
	if err != nil {
		h.Log.Error("list groups failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not list groups")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"groups":      list,
		"total":       total,
		"page":        page.Number,
		"total_pages": page.TotalPages(total),
	})
}

// ServeGroupSearch returns all groups whose name or description contains
// the query, case-insensitively.
func (h *Handler) ServeGroupSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(query.Get(r, "q"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Engine.SearchGroups(ctx, q)
	if err != nil {
		if httpjson.IsEngineError(err) {
			httpjson.WriteEngineError(w, err)
			return
		}
		h.Log.Error("search groups failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not search groups")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{"groups": list})
}

// ServeAvailableGroups returns a page of groups the caller has not
// joined, optionally filtered by a search query.
func (h *Handler) ServeAvailableGroups(w http.ResponseWriter, r *http.Request) {
	uid, ok := actor(w, r)
	if !ok {
		return
	}
	page := paging.Parse(r)
	q := strings.TrimSpace(query.Get(r, "q"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := h.Engine.AvailableGroups(ctx, uid, q, page.Skip(), page.Limit())
	if err != nil {
		h.Log.Error("list available groups failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal_error", "could not list available groups")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"groups":      list,
		"total":       total,
		"page":        page.Number,
		"total_pages": page.TotalPages(total),
	})
}
