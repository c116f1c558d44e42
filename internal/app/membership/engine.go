// internal/app/membership/engine.go
package membership

// Terminology:
//   - Actor: the authenticated user id an operation runs on behalf of.
//     Handlers resolve it from the session and the engine trusts it.
//   - Group admin: a member listed in the group's admins array, distinct
//     from the platform-wide "admin" role.

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/studycircle/studycircle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// saveRetries bounds the optimistic-concurrency retry loop. Each retry
// reloads the group and re-validates the operation against fresh state.
const saveRetries = 3

// Engine owns all group and membership mutation rules. It keeps the
// denormalized pair (Group.Members/Admins, User.MemberOf) consistent:
// the group document is the authoritative side and is written first with
// a compare-and-save; the user side is an idempotent follow-up write with
// a compensating group write if it fails.
type Engine struct {
	groups GroupStore
	users  UserStore
	log    *zap.Logger
}

func New(groups GroupStore, users UserStore, logger *zap.Logger) *Engine {
	return &Engine{groups: groups, users: users, log: logger}
}

// CreateGroup creates a group with the actor as sole member and sole admin.
func (e *Engine) CreateGroup(ctx context.Context, actor primitive.ObjectID, name, description string) (models.Group, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return models.Group{}, ErrNameRequired
	}
	if description == "" {
		return models.Group{}, ErrDescriptionRequired
	}

	nameCI := text.Fold(name)
	taken, err := e.groups.NameExists(ctx, nameCI, primitive.NilObjectID)
	if err != nil {
		return models.Group{}, err
	}
	if taken {
		return models.Group{}, ErrDuplicateGroupName
	}

	now := time.Now().UTC()
	g := models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      nameCI,
		Description: description,
		CreatedBy:   actor,
		Members:     []primitive.ObjectID{actor},
		Admins:      []primitive.ObjectID{actor},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := checkInvariants(&g); err != nil {
		return models.Group{}, err
	}
	if err := e.groups.Insert(ctx, g); err != nil {
		return models.Group{}, err
	}

	if err := e.users.AddMemberOf(ctx, actor, g.ID); err != nil {
		// Roll the group back rather than leave a group the creator is not
		// attached to. If the rollback also fails, Reconcile repairs it.
		if delErr := e.groups.Delete(ctx, g.ID, g.Version); delErr != nil {
			e.log.Error("create rollback failed; run reconcile",
				zap.String("group_id", g.ID.Hex()), zap.Error(delErr))
		}
		return models.Group{}, err
	}
	return g, nil
}

// GetGroup loads a single group.
func (e *Engine) GetGroup(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	return e.groups.GetByID(ctx, id)
}

// ListGroups returns a creation-ordered window plus the total group count.
func (e *Engine) ListGroups(ctx context.Context, skip, limit int64) ([]models.Group, int64, error) {
	return e.groups.List(ctx, skip, limit)
}

// SearchGroups returns all groups matching query as a case-insensitive
// substring of name or description, in creation order.
func (e *Engine) SearchGroups(ctx context.Context, query string) ([]models.Group, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	return e.groups.Search(ctx, query)
}

// UpdateGroup renames and/or re-describes a group. Nil means "leave as is".
// Only a group admin may update.
func (e *Engine) UpdateGroup(ctx context.Context, actor, groupID primitive.ObjectID, name, description *string) (models.Group, error) {
	return e.withGroup(ctx, groupID, func(g *models.Group) error {
		if !g.HasAdmin(actor) {
			return ErrNotGroupAdmin
		}
		if name != nil {
			n := strings.TrimSpace(*name)
			if n == "" {
				return ErrNameRequired
			}
			nameCI := text.Fold(n)
			if nameCI != g.NameCI {
				taken, err := e.groups.NameExists(ctx, nameCI, g.ID)
				if err != nil {
					return err
				}
				if taken {
					return ErrDuplicateGroupName
				}
			}
			g.Name = n
			g.NameCI = nameCI
		}
		if description != nil {
			d := strings.TrimSpace(*description)
			if d == "" {
				return ErrDescriptionRequired
			}
			g.Description = d
		}
		return nil
	})
}

// DeleteGroup removes a group and detaches it from every former member's
// member_of set. Only a group admin may delete.
func (e *Engine) DeleteGroup(ctx context.Context, actor, groupID primitive.ObjectID) error {
	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		g, err := e.groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if !g.HasAdmin(actor) {
			return ErrNotGroupAdmin
		}
		if err := e.groups.Delete(ctx, g.ID, g.Version); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return err
		}
		// Dangling member_of references would break the bidirectional
		// consistency rule, so the detach is part of the operation.
		if err := e.users.DetachGroupFromAll(ctx, groupID); err != nil {
			e.log.Error("detach after group delete failed; run reconcile",
				zap.String("group_id", groupID.Hex()), zap.Error(err))
			return err
		}
		return nil
	}
	return lastErr
}

// withGroup runs the load → mutate → compare-and-save loop for a single
// group. mutate sees a freshly loaded document on every attempt and must
// re-derive any decision from it; returning an error aborts the operation
// without committing anything.
func (e *Engine) withGroup(ctx context.Context, groupID primitive.ObjectID, mutate func(g *models.Group) error) (models.Group, error) {
	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		g, err := e.groups.GetByID(ctx, groupID)
		if err != nil {
			return models.Group{}, err
		}
		if err := mutate(&g); err != nil {
			return models.Group{}, err
		}
		if err := checkInvariants(&g); err != nil {
			return models.Group{}, err
		}
		expected := g.Version
		g.Version++
		g.UpdatedAt = time.Now().UTC()
		if err := e.groups.Save(ctx, g, expected); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return models.Group{}, err
		}
		return g, nil
	}
	return models.Group{}, lastErr
}

// checkInvariants verifies the structural rules a group must satisfy before
// any write is committed: a non-empty admin set that is a subset of the
// members set. A violation here means a bug in the calling operation; the
// write is refused rather than committed partially.
func checkInvariants(g *models.Group) error {
	if len(g.Admins) == 0 {
		return ErrLastAdmin
	}
	for _, a := range g.Admins {
		if !g.HasMember(a) {
			return ErrNotMember
		}
	}
	return nil
}
