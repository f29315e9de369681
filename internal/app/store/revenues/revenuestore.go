// internal/app/store/revenues/revenuestore.go
package revenuestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateRevenue = errors.New("a revenue source with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("revenues")}
}

// Create inserts a new revenue source.
func (s *Store) Create(ctx context.Context, r models.Revenue) (models.Revenue, error) {
	r.ID = primitive.NewObjectID()
	r.Name = normalize.Name(r.Name)
	r.NameCI = text.Fold(r.Name)

	for i, kw := range r.Keywords {
		r.Keywords[i] = text.Fold(normalize.Name(kw))
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Revenue{}, ErrDuplicateRevenue
		}
		return models.Revenue{}, err
	}
	return r, nil
}

// List returns all revenue sources sorted by folded name.
func (s *Store) List(ctx context.Context) ([]models.Revenue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var revenues []models.Revenue
	if err := cur.All(ctx, &revenues); err != nil {
		return nil, err
	}
	return revenues, nil
}

// Suggest returns revenue sources whose name or keywords contain the
// folded query text.
func (s *Store) Suggest(ctx context.Context, query string) ([]models.Revenue, error) {
	folded := text.Fold(normalize.QueryParam(query))
	if folded == "" {
		return s.List(ctx)
	}
	filter := bson.M{"$or": []bson.M{
		{"name_ci": bson.M{"$regex": folded}},
		{"keywords": folded},
	}}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var revenues []models.Revenue
	if err := cur.All(ctx, &revenues); err != nil {
		return nil, err
	}
	return revenues, nil
}

// Delete removes a revenue source by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
