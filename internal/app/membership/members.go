// internal/app/membership/members.go
package membership

import (
	"context"
	"errors"
	"time"

	"github.com/studycircle/studycircle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// JoinGroup adds the actor to the group's members. The admin set is not
// touched.
func (e *Engine) JoinGroup(ctx context.Context, actor, groupID primitive.ObjectID) (models.Group, error) {
	g, err := e.withGroup(ctx, groupID, func(g *models.Group) error {
		if g.HasMember(actor) {
			return ErrAlreadyMember
		}
		g.Members = append(g.Members, actor)
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}

	if err := e.userWrite(ctx, func() error {
		return e.users.AddMemberOf(ctx, actor, groupID)
	}); err != nil {
		// Compensate: take the member back out so the two sides agree.
		if _, cErr := e.withGroup(ctx, groupID, func(g *models.Group) error {
			g.Members = models.RemoveID(g.Members, actor)
			g.Admins = models.RemoveID(g.Admins, actor)
			return nil
		}); cErr != nil {
			e.log.Error("join compensation failed; run reconcile",
				zap.String("group_id", groupID.Hex()),
				zap.String("user_id", actor.Hex()),
				zap.Error(cErr))
		}
		return models.Group{}, err
	}
	return g, nil
}

// LeaveGroup removes the actor from the group's members and, if present,
// admins. If the actor was the sole admin, the longest-tenured remaining
// member is promoted in the same write; if the actor was the last member,
// the group is deleted.
func (e *Engine) LeaveGroup(ctx context.Context, actor, groupID primitive.ObjectID) (models.Group, error) {
	g, _, err := e.detachMember(ctx, groupID, actor, func(g *models.Group) error {
		if !g.HasMember(actor) {
			return ErrNotMember
		}
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}

	if err := e.userWrite(ctx, func() error {
		return e.users.RemoveMemberOf(ctx, actor, groupID)
	}); err != nil {
		e.log.Error("member_of detach after leave failed; run reconcile",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", actor.Hex()),
			zap.Error(err))
		return models.Group{}, err
	}
	return g, nil
}

// PromoteMember adds target to the group's admin set. Only a group admin
// may promote, the target must already be a member, and promoting an admin
// is a conflict.
func (e *Engine) PromoteMember(ctx context.Context, actor, groupID, target primitive.ObjectID) (models.Group, error) {
	return e.withGroup(ctx, groupID, func(g *models.Group) error {
		if !g.HasAdmin(actor) {
			return ErrNotGroupAdmin
		}
		if !g.HasMember(target) {
			return ErrNotMember
		}
		if g.HasAdmin(target) {
			return ErrAlreadyAdmin
		}
		g.Admins = append(g.Admins, target)
		return nil
	})
}

// DemoteMember removes target from the group's admin set. Only a group
// admin may demote, self-demotion is always rejected, and the sole admin
// cannot be demoted.
func (e *Engine) DemoteMember(ctx context.Context, actor, groupID, target primitive.ObjectID) (models.Group, error) {
	return e.withGroup(ctx, groupID, func(g *models.Group) error {
		if !g.HasAdmin(actor) {
			return ErrNotGroupAdmin
		}
		if target == actor {
			return ErrSelfDemotion
		}
		if !g.HasAdmin(target) {
			return ErrNotAdmin
		}
		// A non-self admin target implies a second admin, so this only
		// trips if the self-demotion rule above ever changes.
		if len(g.Admins) == 1 {
			return ErrLastAdmin
		}
		g.Admins = models.RemoveID(g.Admins, target)
		return nil
	})
}

// RemoveMember removes target from the group's members and admins. Only a
// group admin may remove. The same last-admin promotion and last-member
// deletion rules as LeaveGroup apply.
func (e *Engine) RemoveMember(ctx context.Context, actor, groupID, target primitive.ObjectID) (models.Group, error) {
	g, _, err := e.detachMember(ctx, groupID, target, func(g *models.Group) error {
		if !g.HasAdmin(actor) {
			return ErrNotGroupAdmin
		}
		if !g.HasMember(target) {
			return ErrNotMember
		}
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}

	if err := e.userWrite(ctx, func() error {
		return e.users.RemoveMemberOf(ctx, target, groupID)
	}); err != nil {
		e.log.Error("member_of detach after removal failed; run reconcile",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", target.Hex()),
			zap.Error(err))
		return models.Group{}, err
	}
	return g, nil
}

// detachMember is the shared core of LeaveGroup and RemoveMember: drop
// target from members and admins, promote the longest-tenured remaining
// member if the admin set emptied, and delete the group if the member set
// emptied. precheck runs against freshly loaded state on every retry.
// The returned bool reports whether the group was deleted.
func (e *Engine) detachMember(ctx context.Context, groupID, target primitive.ObjectID, precheck func(*models.Group) error) (models.Group, bool, error) {
	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		g, err := e.groups.GetByID(ctx, groupID)
		if err != nil {
			return models.Group{}, false, err
		}
		if err := precheck(&g); err != nil {
			return models.Group{}, false, err
		}

		g.Members = models.RemoveID(g.Members, target)
		g.Admins = models.RemoveID(g.Admins, target)
		expected := g.Version

		if len(g.Members) == 0 {
			// The group dissolves with its last member; an empty group
			// cannot satisfy the non-empty-admins rule.
			if err := e.groups.Delete(ctx, g.ID, expected); err != nil {
				if errors.Is(err, ErrVersionConflict) {
					lastErr = err
					continue
				}
				return models.Group{}, false, err
			}
			return g, true, nil
		}

		if len(g.Admins) == 0 {
			// Members preserves join order, so index 0 is the
			// longest-tenured remaining member.
			g.Admins = []primitive.ObjectID{g.Members[0]}
		}
		if err := checkInvariants(&g); err != nil {
			return models.Group{}, false, err
		}

		g.Version++
		g.UpdatedAt = time.Now().UTC()
		if err := e.groups.Save(ctx, g, expected); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return models.Group{}, false, err
		}
		return g, false, nil
	}
	return models.Group{}, false, lastErr
}

// userWrite runs an idempotent user-side write with one retry. Persistent
// failure is surfaced to the caller; Reconcile repairs any divergence a
// crash leaves behind.
func (e *Engine) userWrite(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	return fn()
}
