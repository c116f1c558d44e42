// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account on the platform.
//
// NOTE:
//   - MemberOf is a denormalized back-reference to groups.members and is
//     kept in lockstep by the membership engine. If the two ever diverge
//     (crash between the group write and the user write), the engine's
//     Reconcile pass rebuilds MemberOf from groups.members.
//   - Role is the platform-wide role (user | admin), unrelated to a
//     group's admin set.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email        string               `bson:"email" json:"email"` // lowercase, unique
	Name         string               `bson:"name,omitempty" json:"name,omitempty"`
	NameCI       string               `bson:"name_ci,omitempty" json:"-"` // lowercase, diacritics-stripped
	PasswordHash string               `bson:"password_hash" json:"-"`
	Role         string               `bson:"role" json:"role"` // user | admin
	MemberOf     []primitive.ObjectID `bson:"member_of" json:"member_of"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Platform roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsMemberOf reports whether the user's back-reference set contains groupID.
func (u *User) IsMemberOf(groupID primitive.ObjectID) bool {
	for _, id := range u.MemberOf {
		if id == groupID {
			return true
		}
	}
	return false
}
