// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a study group.
//
// NOTE:
//   - Members and Admins are stored on the group document itself; Admins is
//     always a subset of Members and is never empty while the group exists.
//   - Members preserves join order (oldest first), which is what the
//     last-admin auto-promotion rule keys on.
//   - Version is the optimistic-concurrency counter: every mutation loads
//     the document, applies the change, and saves with a compare-and-save
//     on (_id, version). Concurrent writers retry against fresh state.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped; unique
	Description string               `bson:"description" json:"description"`
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"created_by"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	Admins      []primitive.ObjectID `bson:"admins" json:"admins"`

	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether userID is in the group's members set.
func (g *Group) HasMember(userID primitive.ObjectID) bool {
	return containsID(g.Members, userID)
}

// HasAdmin reports whether userID is in the group's admin set.
func (g *Group) HasAdmin(userID primitive.ObjectID) bool {
	return containsID(g.Admins, userID)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveID returns a copy of ids without id, preserving order.
func RemoveID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
