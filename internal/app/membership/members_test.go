package membership_test

import (
	"context"
	"errors"
	"testing"

	"github.com/studycircle/studycircle/internal/app/membership"
)

func TestJoinGroup(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")

	joined, err := engine.JoinGroup(ctx, bob.ID, g.ID)
	if err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}
	if !joined.HasMember(bob.ID) {
		t.Error("joiner missing from members")
	}
	if joined.HasAdmin(bob.ID) {
		t.Error("joining must not grant admin")
	}

	u, err := users.GetByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !u.IsMemberOf(g.ID) {
		t.Error("joiner's member_of missing the group")
	}

	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); !errors.Is(err, membership.ErrAlreadyMember) {
		t.Errorf("second join: got %v, want ErrAlreadyMember", err)
	}
}

func TestJoinGroup_RetriesOnVersionConflict(t *testing.T) {
	engine, groups, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")

	groups.SaveConflicts = 2
	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("join should survive two conflicts: %v", err)
	}

	carol := newUser(t, users, "Carol")
	groups.SaveConflicts = 3
	if _, err := engine.JoinGroup(ctx, carol.ID, g.ID); !errors.Is(err, membership.ErrVersionConflict) {
		t.Errorf("got %v, want ErrVersionConflict after retries exhausted", err)
	}
}

func TestJoinGroup_CompensatesWhenUserWriteFails(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")
	users.AddMemberOfErr = errors.New("user write down")

	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err == nil {
		t.Fatal("expected error")
	}

	cur, err := engine.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if cur.HasMember(bob.ID) {
		t.Error("failed join left the member on the group side")
	}
}

func TestLeaveGroup(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")

	if _, err := engine.LeaveGroup(ctx, bob.ID, g.ID); !errors.Is(err, membership.ErrNotMember) {
		t.Errorf("got %v, want ErrNotMember", err)
	}

	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}
	if _, err := engine.LeaveGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("LeaveGroup: %v", err)
	}

	cur, err := engine.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if cur.HasMember(bob.ID) {
		t.Error("leaver still in members")
	}
	u, err := users.GetByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.IsMemberOf(g.ID) {
		t.Error("leaver's member_of still references the group")
	}
}

func TestLeaveGroup_SoleAdminPromotesLongestTenuredMember(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")
	carol := newUser(t, users, "Carol")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")
	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("JoinGroup bob: %v", err)
	}
	if _, err := engine.JoinGroup(ctx, carol.ID, g.ID); err != nil {
		t.Fatalf("JoinGroup carol: %v", err)
	}

	if _, err := engine.LeaveGroup(ctx, alice.ID, g.ID); err != nil {
		t.Fatalf("LeaveGroup: %v", err)
	}

	cur, err := engine.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if !cur.HasAdmin(bob.ID) {
		t.Error("longest-tenured remaining member was not promoted")
	}
	if cur.HasAdmin(carol.ID) {
		t.Error("only one member should be promoted")
	}
	if len(cur.Admins) == 0 {
		t.Fatal("admin set must never be empty")
	}
}

func TestLeaveGroup_LastMemberDeletesGroup(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")
	if _, err := engine.LeaveGroup(ctx, alice.ID, g.ID); err != nil {
		t.Fatalf("LeaveGroup: %v", err)
	}

	if _, err := engine.GetGroup(ctx, g.ID); !errors.Is(err, membership.ErrGroupNotFound) {
		t.Errorf("group should be deleted, got %v", err)
	}
	u, err := users.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.IsMemberOf(g.ID) {
		t.Error("member_of still references the dissolved group")
	}
}

func TestPromoteMember(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")
	carol := newUser(t, users, "Carol")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")
	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}

	// Non-admins cannot promote, even themselves.
	if _, err := engine.PromoteMember(ctx, bob.ID, g.ID, bob.ID); !errors.Is(err, membership.ErrNotGroupAdmin) {
		t.Errorf("got %v, want ErrNotGroupAdmin", err)
	}
	// Target must be a member.
	if _, err := engine.PromoteMember(ctx, alice.ID, g.ID, carol.ID); !errors.Is(err, membership.ErrNotMember) {
		t.Errorf("got %v, want ErrNotMember", err)
	}

	cur, err := engine.PromoteMember(ctx, alice.ID, g.ID, bob.ID)
	if err != nil {
		t.Fatalf("PromoteMember: %v", err)
	}
	if !cur.HasAdmin(bob.ID) {
		t.Error("target not in admins after promote")
	}

	if _, err := engine.PromoteMember(ctx, alice.ID, g.ID, bob.ID); !errors.Is(err, membership.ErrAlreadyAdmin) {
		t.Errorf("got %v, want ErrAlreadyAdmin", err)
	}
}

func TestDemoteMember(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")
	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}

	// Demoting a plain member is a precondition failure.
	if _, err := engine.DemoteMember(ctx, alice.ID, g.ID, bob.ID); !errors.Is(err, membership.ErrNotAdmin) {
		t.Errorf("got %v, want ErrNotAdmin", err)
	}

	// Self-demotion is always rejected, even with other admins around.
	if _, err := engine.PromoteMember(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatalf("PromoteMember: %v", err)
	}
	if _, err := engine.DemoteMember(ctx, alice.ID, g.ID, alice.ID); !errors.Is(err, membership.ErrSelfDemotion) {
		t.Errorf("got %v, want ErrSelfDemotion", err)
	}

	cur, err := engine.DemoteMember(ctx, alice.ID, g.ID, bob.ID)
	if err != nil {
		t.Fatalf("DemoteMember: %v", err)
	}
	if cur.HasAdmin(bob.ID) {
		t.Error("target still admin after demote")
	}
	if !cur.HasMember(bob.ID) {
		t.Error("demote must not remove membership")
	}
}

func TestRemoveMember(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")
	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}

	if _, err := engine.RemoveMember(ctx, bob.ID, g.ID, alice.ID); !errors.Is(err, membership.ErrNotGroupAdmin) {
		t.Errorf("got %v, want ErrNotGroupAdmin", err)
	}

	if _, err := engine.RemoveMember(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	cur, err := engine.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if cur.HasMember(bob.ID) {
		t.Error("removed member still present")
	}
	u, err := users.GetByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.IsMemberOf(g.ID) {
		t.Error("removed member's back-reference still present")
	}

	if _, err := engine.RemoveMember(ctx, alice.ID, g.ID, bob.ID); !errors.Is(err, membership.ErrNotMember) {
		t.Errorf("got %v, want ErrNotMember", err)
	}
}

func TestRemoveMember_SelfRemovalPromotesSuccessor(t *testing.T) {
	engine, _, users := newEngine()
	ctx := context.Background()
	alice := newUser(t, users, "Alice")
	bob := newUser(t, users, "Bob")

	g := mustCreate(t, engine, alice.ID, "Algebra", "desc")
	if _, err := engine.JoinGroup(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}

	// The sole admin removing themselves hands the group to the oldest
	// remaining member.
	if _, err := engine.RemoveMember(ctx, alice.ID, g.ID, alice.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	cur, err := engine.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if !cur.HasAdmin(bob.ID) {
		t.Error("successor not promoted")
	}
}
