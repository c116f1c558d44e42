// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"regexp"

	"github.com/studycircle/studycircle/internal/app/membership"
	"github.com/studycircle/studycircle/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists groups in the "groups" collection. Save and Delete match
// on the stored version field, so concurrent writers lose cleanly instead
// of clobbering each other.
type Store struct {
	c *mongo.Collection
}

var _ membership.GroupStore = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, membership.ErrGroupNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) Insert(ctx context.Context, g models.Group) error {
	_, err := s.c.InsertOne(ctx, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return membership.ErrDuplicateGroupName
		}
		return err
	}
	return nil
}

// Save replaces the document only if the stored version still equals
// expectedVersion. A miss is reported as a version conflict unless the
// group is gone entirely.
func (s *Store) Save(ctx context.Context, g models.Group, expectedVersion int64) error {
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": g.ID, "version": expectedVersion}, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return membership.ErrDuplicateGroupName
		}
		return err
	}
	if res.MatchedCount == 0 {
		if err := s.c.FindOne(ctx, bson.M{"_id": g.ID}).Err(); errors.Is(err, mongo.ErrNoDocuments) {
			return membership.ErrGroupNotFound
		}
		return membership.ErrVersionConflict
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, expectedVersion int64) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "version": expectedVersion})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); errors.Is(err, mongo.ErrNoDocuments) {
			return membership.ErrGroupNotFound
		}
		return membership.ErrVersionConflict
	}
	return nil
}

func (s *Store) NameExists(ctx context.Context, nameCI string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"name_ci": nameCI}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns a page of groups in insertion order plus the total count.
func (s *Store) List(ctx context.Context, skip, limit int64) ([]models.Group, int64, error) {
	total, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Search matches the query as a case-insensitive substring of the group
// name or description.
func (s *Store) Search(ctx context.Context, query string) ([]models.Group, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"description": re},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAvailable pages through groups the user does not belong to. The
// total reflects the filtered set, not the whole collection.
func (s *Store) ListAvailable(ctx context.Context, userID primitive.ObjectID, query string, skip, limit int64) ([]models.Group, int64, error) {
	filter := bson.M{"members": bson.M{"$ne": userID}}
	if query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
		}
	}
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) All(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
