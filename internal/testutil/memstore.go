// internal/testutil/memstore.go
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/studycircle/studycircle/internal/app/membership"
	"github.com/studycircle/studycircle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemGroupStore is an in-memory membership.GroupStore with the same
// compare-and-save semantics as the Mongo store. Tests can inject version
// conflicts and errors to exercise the engine's retry and compensation
// paths.
type MemGroupStore struct {
	mu     sync.Mutex
	groups map[primitive.ObjectID]models.Group
	order  []primitive.ObjectID // creation order

	// SaveConflicts makes the next n Save calls fail with
	// ErrVersionConflict before touching state.
	SaveConflicts int
	// SaveErr, when non-nil, fails every Save.
	SaveErr error
}

func NewMemGroupStore() *MemGroupStore {
	return &MemGroupStore{groups: make(map[primitive.ObjectID]models.Group)}
}

var _ membership.GroupStore = (*MemGroupStore)(nil)

func (s *MemGroupStore) GetByID(_ context.Context, id primitive.ObjectID) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return models.Group{}, membership.ErrGroupNotFound
	}
	return cloneGroup(g), nil
}

func (s *MemGroupStore) Insert(_ context.Context, g models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.groups {
		if other.NameCI == g.NameCI {
			return membership.ErrDuplicateGroupName
		}
	}
	s.groups[g.ID] = cloneGroup(g)
	s.order = append(s.order, g.ID)
	return nil
}

func (s *MemGroupStore) Save(_ context.Context, g models.Group, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if s.SaveConflicts > 0 {
		s.SaveConflicts--
		return membership.ErrVersionConflict
	}
	cur, ok := s.groups[g.ID]
	if !ok {
		return membership.ErrGroupNotFound
	}
	if cur.Version != expectedVersion {
		return membership.ErrVersionConflict
	}
	for id, other := range s.groups {
		if id != g.ID && other.NameCI == g.NameCI {
			return membership.ErrDuplicateGroupName
		}
	}
	s.groups[g.ID] = cloneGroup(g)
	return nil
}

func (s *MemGroupStore) Delete(_ context.Context, id primitive.ObjectID, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.groups[id]
	if !ok {
		return membership.ErrGroupNotFound
	}
	if cur.Version != expectedVersion {
		return membership.ErrVersionConflict
	}
	delete(s.groups, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemGroupStore) NameExists(_ context.Context, nameCI string, excludeID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, g := range s.groups {
		if id != excludeID && g.NameCI == nameCI {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemGroupStore) List(_ context.Context, skip, limit int64) ([]models.Group, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.ordered()
	return window(all, skip, limit), int64(len(all)), nil
}

func (s *MemGroupStore) Search(_ context.Context, query string) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Group
	for _, g := range s.ordered() {
		if matchesQuery(g, query) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *MemGroupStore) ListAvailable(_ context.Context, userID primitive.ObjectID, query string, skip, limit int64) ([]models.Group, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Group
	for _, g := range s.ordered() {
		if g.HasMember(userID) {
			continue
		}
		if query != "" && !matchesQuery(g, query) {
			continue
		}
		matched = append(matched, g)
	}
	return window(matched, skip, limit), int64(len(matched)), nil
}

func (s *MemGroupStore) All(_ context.Context) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordered(), nil
}

func (s *MemGroupStore) ordered() []models.Group {
	out := make([]models.Group, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneGroup(s.groups[id]))
	}
	return out
}

func matchesQuery(g models.Group, query string) bool {
	q := text.Fold(query)
	return strings.Contains(text.Fold(g.Name), q) ||
		strings.Contains(text.Fold(g.Description), q)
}

func window(all []models.Group, skip, limit int64) []models.Group {
	if skip >= int64(len(all)) {
		return nil
	}
	end := skip + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[skip:end]
}

func cloneGroup(g models.Group) models.Group {
	g.Members = append([]primitive.ObjectID(nil), g.Members...)
	g.Admins = append([]primitive.ObjectID(nil), g.Admins...)
	return g
}

// MemUserStore is an in-memory membership.UserStore.
type MemUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User

	// AddMemberOfErr, when non-nil, fails every AddMemberOf call.
	AddMemberOfErr error
	// RemoveMemberOfErr, when non-nil, fails every RemoveMemberOf call.
	RemoveMemberOfErr error
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[primitive.ObjectID]models.User)}
}

var _ membership.UserStore = (*MemUserStore)(nil)

// Put stores a user directly, for fixture setup.
func (s *MemUserStore) Put(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = cloneUser(u)
}

func (s *MemUserStore) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, membership.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *MemUserStore) AddMemberOf(_ context.Context, userID, groupID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AddMemberOfErr != nil {
		return s.AddMemberOfErr
	}
	u, ok := s.users[userID]
	if !ok {
		return membership.ErrUserNotFound
	}
	if !u.IsMemberOf(groupID) {
		u.MemberOf = append(u.MemberOf, groupID)
		s.users[userID] = u
	}
	return nil
}

func (s *MemUserStore) RemoveMemberOf(_ context.Context, userID, groupID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RemoveMemberOfErr != nil {
		return s.RemoveMemberOfErr
	}
	u, ok := s.users[userID]
	if !ok {
		return membership.ErrUserNotFound
	}
	u.MemberOf = models.RemoveID(u.MemberOf, groupID)
	s.users[userID] = u
	return nil
}

func (s *MemUserStore) DetachGroupFromAll(_ context.Context, groupID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		u.MemberOf = models.RemoveID(u.MemberOf, groupID)
		s.users[id] = u
	}
	return nil
}

func (s *MemUserStore) SetMemberOf(_ context.Context, userID primitive.ObjectID, groupIDs []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return membership.ErrUserNotFound
	}
	u.MemberOf = append([]primitive.ObjectID(nil), groupIDs...)
	s.users[userID] = u
	return nil
}

func (s *MemUserStore) All(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func cloneUser(u models.User) models.User {
	u.MemberOf = append([]primitive.ObjectID(nil), u.MemberOf...)
	return u
}
