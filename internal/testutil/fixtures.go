// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/studycircle/studycircle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewUser creates a user fixture and stores it in the given store.
func NewUser(t *testing.T, store *MemUserStore, name string) models.User {
	t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     text.Fold(name) + "@example.com",
		Name:      name,
		NameCI:    text.Fold(name),
		Role:      models.RoleUser,
		MemberOf:  []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	store.Put(u)
	return u
}

// NewGroup creates a group fixture with the given creator as sole member
// and admin, stores it, and records the back-reference on the creator.
func NewGroup(t *testing.T, groups *MemGroupStore, users *MemUserStore, creator models.User, name string) models.Group {
	t.Helper()
	now := time.Now().UTC()
	g := models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: name + " description",
		CreatedBy:   creator.ID,
		Members:     []primitive.ObjectID{creator.ID},
		Admins:      []primitive.ObjectID{creator.ID},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ctx := context.Background()
	if err := groups.Insert(ctx, g); err != nil {
		t.Fatalf("insert group fixture: %v", err)
	}
	if err := users.AddMemberOf(ctx, creator.ID, g.ID); err != nil {
		t.Fatalf("attach group fixture: %v", err)
	}
	return g
}
