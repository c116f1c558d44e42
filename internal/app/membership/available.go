// internal/app/membership/available.go
package membership

import (
	"context"
	"strings"

	"github.com/studycircle/studycircle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AvailableGroups returns the creation-ordered window of groups the actor
// has not joined, optionally filtered by a case-insensitive substring match
// on name or description. The returned total counts the filtered set, not
// the unfiltered universe, so pagination math stays consistent with the
// rows returned.
//
// Membership is judged from the authoritative side (groups.members), so the
// result is correct even if the actor's member_of back-reference is stale.
func (e *Engine) AvailableGroups(ctx context.Context, actor primitive.ObjectID, query string, skip, limit int64) ([]models.Group, int64, error) {
	return e.groups.ListAvailable(ctx, actor, strings.TrimSpace(query), skip, limit)
}
