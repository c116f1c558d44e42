package membership_test

import (
	"context"
	"errors"
	"testing"

	"github.com/studycircle/studycircle/internal/app/membership"
	"github.com/studycircle/studycircle/internal/domain/models"
	"github.com/studycircle/studycircle/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newEngine() (*membership.Engine, *testutil.MemGroupStore, *testutil.MemUserStore) {
	groups := testutil.NewMemGroupStore()
	users := testutil.NewMemUserStore()
	return membership.New(groups, users, zap.NewNop()), groups, users
}

func newUser(t *testing.T, users *testutil.MemUserStore, name string) models.User {
	t.Helper()
	return testutil.NewUser(t, users, name)
}

func strptr(s string) *string { return &s }

func TestCreateGroup(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")

	g, err := engine.CreateGroup(ctx, alice.ID, "  Linear Algebra  ", "Weekly problem sets")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if g.Name != "Linear Algebra" {
		t.Errorf("name not trimmed: %q", g.Name)
	}
	if g.Version != 1 {
		t.Errorf("version = %d, want 1", g.Version)
	}
	if !g.HasMember(alice.ID) || !g.HasAdmin(alice.ID) {
		t.Error("creator must be sole member and admin")
	}
	if g.CreatedBy != alice.ID {
		t.Error("created_by not set to creator")
	}

	u, err := users.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !u.IsMemberOf(g.ID) {
		t.Error("creator's member_of missing the new group")
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")

	if _, err := engine.CreateGroup(ctx, alice.ID, "   ", "desc"); !errors.Is(err, membership.ErrNameRequired) {
		t.Errorf("blank name: got %v, want ErrNameRequired", err)
	}
	if _, err := engine.CreateGroup(ctx, alice.ID, "Calc", "  "); !errors.Is(err, membership.ErrDescriptionRequired) {
		t.Errorf("blank description: got %v, want ErrDescriptionRequired", err)
	}
}

func TestCreateGroup_DuplicateNameCaseInsensitive(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	if _, err := engine.CreateGroup(ctx, alice.ID, "Algebra", "first"); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := engine.CreateGroup(ctx, bob.ID, "ALGEBRA", "second"); !errors.Is(err, membership.ErrDuplicateGroupName) {
		t.Errorf("got %v, want ErrDuplicateGroupName", err)
	}
}

func TestCreateGroup_RollsBackWhenUserWriteFails(t *testing.T) {
	engine, groups, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	users.AddMemberOfErr = errors.New("user write down")

	if _, err := engine.CreateGroup(ctx, alice.ID, "Algebra", "desc"); err == nil {
		t.Fatal("expected error")
	}
	all, err := groups.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("group left behind after failed create: %d", len(all))
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	engine, _, _ := newEngine()
	if _, err := engine.GetGroup(context.Background(), primitive.NewObjectID()); !errors.Is(err, membership.ErrGroupNotFound) {
		t.Errorf("got %v, want ErrGroupNotFound", err)
	}
}

func TestListGroups_Paging(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")

	names := []string{"Algebra", "Biology", "Chemistry", "Drama", "Economics"}
	for _, n := range names {
		if _, err := engine.CreateGroup(ctx, alice.ID, n, n+" desc"); err != nil {
			t.Fatalf("CreateGroup %s: %v", n, err)
		}
	}

	page, total, err := engine.ListGroups(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 || page[0].Name != "Chemistry" || page[1].Name != "Drama" {
		t.Errorf("unexpected window: %+v", page)
	}
}

func TestSearchGroups(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")

	mustCreate(t, engine, alice.ID, "Linear Algebra", "matrices and vector spaces")
	mustCreate(t, engine, alice.ID, "Organic Chemistry", "reactions")
	mustCreate(t, engine, alice.ID, "Statistics", "linear models and inference")

	got, err := engine.SearchGroups(ctx, "LINEAR")
	if err != nil {
		t.Fatalf("SearchGroups: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2 (name and description matches)", len(got))
	}
	if got[0].Name != "Linear Algebra" || got[1].Name != "Statistics" {
		t.Errorf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}

	if _, err := engine.SearchGroups(ctx, "   "); !errors.Is(err, membership.ErrEmptyQuery) {
		t.Errorf("blank query: got %v, want ErrEmptyQuery", err)
	}
}

func TestUpdateGroup(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	g := mustCreate(t, engine, alice.ID, "Algebra", "old desc")
	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}

	// Non-admin member cannot update.
	if _, err := engine.UpdateGroup(ctx, bob.ID, g.ID, strptr("Hijacked"), nil); !errors.Is(err, membership.ErrNotGroupAdmin) {
		t.Errorf("got %v, want ErrNotGroupAdmin", err)
	}

	// Rename plus new description.
	updated, err := engine.UpdateGroup(ctx, alice.ID, g.ID, strptr("Abstract Algebra"), strptr("new desc"))
	if err != nil {
		t.Fatalf("UpdateGroup: %v", err)
	}
	if updated.Name != "Abstract Algebra" || updated.Description != "new desc" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Version <= g.Version {
		t.Errorf("version did not advance: %d", updated.Version)
	}

	// Nil fields leave values alone.
	same, err := engine.UpdateGroup(ctx, alice.ID, g.ID, nil, nil)
	if err != nil {
		t.Fatalf("UpdateGroup no-op: %v", err)
	}
	if same.Name != "Abstract Algebra" || same.Description != "new desc" {
		t.Errorf("no-op update changed fields: %+v", same)
	}

	// Blanking either field is rejected.
	if _, err := engine.UpdateGroup(ctx, alice.ID, g.ID, strptr("  "), nil); !errors.Is(err, membership.ErrNameRequired) {
		t.Errorf("got %v, want ErrNameRequired", err)
	}
	if _, err := engine.UpdateGroup(ctx, alice.ID, g.ID, nil, strptr("")); !errors.Is(err, membership.ErrDescriptionRequired) {
		t.Errorf("got %v, want ErrDescriptionRequired", err)
	}
}

func TestUpdateGroup_NameCollision(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")

	mustCreate(t, engine, alice.ID, "Algebra", "desc")
	g := mustCreate(t, engine, alice.ID, "Biology", "desc")

	if _, err := engine.UpdateGroup(ctx, alice.ID, g.ID, strptr("algebra"), nil); !errors.Is(err, membership.ErrDuplicateGroupName) {
		t.Errorf("got %v, want ErrDuplicateGroupName", err)
	}

	// Re-casing the group's own name is not a collision.
	if _, err := engine.UpdateGroup(ctx, alice.ID, g.ID, strptr("BIOLOGY"), nil); err != nil {
		t.Errorf("re-casing own name: %v", err)
	}
}

func TestDeleteGroup(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")
	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}

	if err := engine.DeleteGroup(ctx, bob.ID, g.ID); !errors.Is(err, membership.ErrNotGroupAdmin) {
		t.Errorf("got %v, want ErrNotGroupAdmin", err)
	}

	if err := engine.DeleteGroup(ctx, alice.ID, g.ID); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if _, err := engine.GetGroup(ctx, g.ID); !errors.Is(err, membership.ErrGroupNotFound) {
		t.Errorf("group still present: %v", err)
	}

	// Every former member's back-reference is gone.
	for _, id := range []primitive.ObjectID{alice.ID, bob.ID} {
		u, err := users.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if u.IsMemberOf(g.ID) {
			t.Errorf("user %s still references deleted group", u.Name)
		}
	}
}

func mustCreate(t *testing.T, engine *membership.Engine, actor primitive.ObjectID, name, desc string) models.Group {
	t.Helper()
	g, err := engine.CreateGroup(context.Background(), actor, name, desc)
	if err != nil {
		t.Fatalf("CreateGroup %s: %v", name, err)
	}
	return g
}
