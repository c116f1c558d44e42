// internal/app/membership/stores.go
package membership

import (
	"context"

	"github.com/studycircle/studycircle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupStore is the persistence contract the engine needs for groups.
// Implementations must make Save a compare-and-save: the write only lands
// if the stored document still carries expectedVersion, otherwise
// ErrVersionConflict. The Mongo implementation lives in
// internal/app/store/groups; tests use an in-memory implementation.
type GroupStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)

	// Insert creates a new group document. Returns ErrDuplicateGroupName if
	// the folded name is already taken.
	Insert(ctx context.Context, g models.Group) error

	// Save persists g if the stored version still equals expectedVersion.
	// Returns ErrVersionConflict on a lost race, ErrGroupNotFound if the
	// group vanished, ErrDuplicateGroupName on a name collision.
	Save(ctx context.Context, g models.Group, expectedVersion int64) error

	// Delete removes the group if the stored version still equals
	// expectedVersion.
	Delete(ctx context.Context, id primitive.ObjectID, expectedVersion int64) error

	// NameExists reports whether a group other than excludeID already uses
	// the folded name.
	NameExists(ctx context.Context, nameCI string, excludeID primitive.ObjectID) (bool, error)

	// List returns a creation-ordered window plus the total group count.
	List(ctx context.Context, skip, limit int64) ([]models.Group, int64, error)

	// Search returns all groups whose name or description contains query as
	// a case-insensitive substring, in creation order.
	Search(ctx context.Context, query string) ([]models.Group, error)

	// ListAvailable returns a creation-ordered window of groups that userID
	// has not joined, optionally filtered like Search, plus the total count
	// of the filtered set.
	ListAvailable(ctx context.Context, userID primitive.ObjectID, query string, skip, limit int64) ([]models.Group, int64, error)

	// All returns every group in creation order. Used by Reconcile.
	All(ctx context.Context) ([]models.Group, error)
}

// UserStore is the persistence contract the engine needs for the user side
// of the membership relation. All writes are single-document and idempotent
// so the engine can retry them safely.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)

	// AddMemberOf adds groupID to the user's member_of set ($addToSet).
	AddMemberOf(ctx context.Context, userID, groupID primitive.ObjectID) error

	// RemoveMemberOf removes groupID from the user's member_of set ($pull).
	RemoveMemberOf(ctx context.Context, userID, groupID primitive.ObjectID) error

	// DetachGroupFromAll removes groupID from every user's member_of set.
	DetachGroupFromAll(ctx context.Context, groupID primitive.ObjectID) error

	// SetMemberOf replaces the user's member_of set. Used by Reconcile.
	SetMemberOf(ctx context.Context, userID primitive.ObjectID, groupIDs []primitive.ObjectID) error

	// All returns every user. Used by Reconcile.
	All(ctx context.Context) ([]models.User, error)
}
