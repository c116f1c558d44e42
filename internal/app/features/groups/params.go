// internal/app/features/groups/params.go
package groups

import (
	"net/http"

	"github.com/studycircle/studycircle/internal/app/system/authz"
	"github.com/studycircle/studycircle/internal/app/system/httpjson"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// groupIDParam parses the {id} route parameter. On failure it writes the
// error response and reports ok=false.
func groupIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	return objectIDParam(w, r, "id", "invalid group id")
}

func objectIDParam(w http.ResponseWriter, r *http.Request, name, msg string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid_id", msg)
		return primitive.NilObjectID, false
	}
	return id, true
}

// actor returns the signed-in caller's id. RequireSignedIn has already
// run, so a miss here means a malformed session; answer 401.
func actor(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return primitive.NilObjectID, false
	}
	return uid, true
}
