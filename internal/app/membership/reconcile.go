// internal/app/membership/reconcile.go
package membership

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReconcileReport summarizes a repair pass.
type ReconcileReport struct {
	UsersChecked int `json:"users_checked"`
	UsersFixed   int `json:"users_fixed"`
	Groups       int `json:"groups"`
}

// Reconcile rebuilds every user's member_of back-reference from the
// authoritative groups.members arrays. Group and user documents live in
// separate collections with no cross-document transaction, so a crash
// between the group write and the user write can leave the two sides
// divergent; this pass restores them. It runs at startup and can be
// invoked on demand.
func (e *Engine) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	groups, err := e.groups.All(ctx)
	if err != nil {
		return report, err
	}
	report.Groups = len(groups)

	// Desired member_of per user, in group creation order.
	want := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, g := range groups {
		for _, uid := range g.Members {
			want[uid] = append(want[uid], g.ID)
		}
	}

	users, err := e.users.All(ctx)
	if err != nil {
		return report, err
	}
	for _, u := range users {
		report.UsersChecked++
		desired := want[u.ID]
		if sameIDSet(u.MemberOf, desired) {
			continue
		}
		if err := e.users.SetMemberOf(ctx, u.ID, desired); err != nil {
			return report, err
		}
		report.UsersFixed++
		e.log.Info("repaired member_of back-reference",
			zap.String("user_id", u.ID.Hex()),
			zap.Int("groups", len(desired)))
	}
	return report, nil
}

func sameIDSet(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[primitive.ObjectID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
