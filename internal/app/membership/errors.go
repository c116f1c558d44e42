// internal/app/membership/errors.go
package membership

import "errors"

// Engine errors. Every failure a caller can act on is one of these
// sentinels; the transport layer maps them onto HTTP statuses.
var (
	// Not found
	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")

	// Conflicts (uniqueness / duplicate state)
	ErrDuplicateGroupName = errors.New("a group with this name already exists")
	ErrAlreadyMember      = errors.New("user is already a member of this group")
	ErrAlreadyAdmin       = errors.New("user is already an admin of this group")

	// Permission
	ErrNotGroupAdmin = errors.New("only a group admin may perform this operation")

	// Failed preconditions (state does not support the operation)
	ErrNotMember = errors.New("user is not a member of this group")
	ErrNotAdmin  = errors.New("user is not an admin of this group")
	ErrLastAdmin = errors.New("the last admin cannot be demoted")

	// Invalid arguments
	ErrSelfDemotion        = errors.New("you cannot demote yourself")
	ErrEmptyQuery          = errors.New("search query is required")
	ErrNameRequired        = errors.New("group name is required")
	ErrDescriptionRequired = errors.New("group description is required")

	// ErrVersionConflict is returned by a GroupStore when a compare-and-save
	// loses to a concurrent writer. The engine retries against reloaded
	// state; callers only see it after the retry budget is exhausted.
	ErrVersionConflict = errors.New("group was modified concurrently")
)
