// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/studycircle/studycircle/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's platform role (lowercased), their Mongo
// ObjectID, and a found flag. A malformed user ID in the session fails
// closed: ok=false.
func UserCtx(r *http.Request) (role string, userID primitive.ObjectID, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", primitive.NilObjectID, false
	}
	uid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return "visitor", primitive.NilObjectID, false
	}
	return strings.ToLower(u.Role), uid, true
}

// IsPlatformAdmin reports whether the caller has the platform-wide admin
// role. This is unrelated to any group's admin set.
func IsPlatformAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == "admin"
}
