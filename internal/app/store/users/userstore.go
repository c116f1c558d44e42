// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/studycircle/studycircle/internal/app/membership"
	"github.com/studycircle/studycircle/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateEmail = errors.New("an account with this email already exists")

// Store persists users in the "users" collection. It serves both account
// operations (signup, login, profile) and the membership side writes on
// member_of.
type Store struct {
	c *mongo.Collection
}

var _ membership.UserStore = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, membership.ErrUserNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks up a user by their already-normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, membership.ErrUserNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a new account. ID, name_ci, and timestamps are assigned
// here.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.NameCI = text.Fold(u.Name)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.MemberOf == nil {
		u.MemberOf = []primitive.ObjectID{}
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate carries the fields a user may change on their own
// account. Nil fields are left alone.
type ProfileUpdate struct {
	Email        *string
	Name         *string
	PasswordHash *string
}

// UpdateProfile applies a partial account update.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Name != nil {
		set["name"] = *upd.Name
		set["name_ci"] = text.Fold(*upd.Name)
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return membership.ErrUserNotFound
	}
	return nil
}

// UpdateRole sets the platform role.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return membership.ErrUserNotFound
	}
	return nil
}

func (s *Store) AddMemberOf(ctx context.Context, userID, groupID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$addToSet": bson.M{"member_of": groupID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return membership.ErrUserNotFound
	}
	return nil
}

func (s *Store) RemoveMemberOf(ctx context.Context, userID, groupID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"member_of": groupID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return membership.ErrUserNotFound
	}
	return nil
}

// DetachGroupFromAll removes a deleted group from every user's member_of.
func (s *Store) DetachGroupFromAll(ctx context.Context, groupID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"member_of": groupID},
		bson.M{
			"$pull": bson.M{"member_of": groupID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}

// SetMemberOf overwrites member_of wholesale. Only the reconcile pass
// uses this.
func (s *Store) SetMemberOf(ctx context.Context, userID primitive.ObjectID, groupIDs []primitive.ObjectID) error {
	if groupIDs == nil {
		groupIDs = []primitive.ObjectID{}
	}
	res, err := s.c.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"member_of":  groupIDs,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return membership.ErrUserNotFound
	}
	return nil
}

func (s *Store) All(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetManyByID fetches the given users in _id order. Missing ids are
// skipped rather than reported.
func (s *Store) GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cur, err := s.c.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
