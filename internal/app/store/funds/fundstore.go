// internal/app/store/funds/fundstore.go
package fundstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateFund  = errors.New("a fund with this name already exists")
	ErrNegativeBudget = errors.New("target budget cannot be negative")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("funds")}
}

// Create inserts a new fund with the given target budget.
func (s *Store) Create(ctx context.Context, f models.Fund, targetBudget decimal.Decimal) (models.Fund, error) {
	if targetBudget.IsNegative() {
		return models.Fund{}, ErrNegativeBudget
	}
	budget128, err := money.ToDecimal128(targetBudget)
	if err != nil {
		return models.Fund{}, err
	}

	f.ID = primitive.NewObjectID()
	f.Name = normalize.Name(f.Name)
	f.NameCI = text.Fold(f.Name)
	f.Currency = normalize.Currency(f.Currency)
	f.TargetBudget = budget128

	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Fund{}, ErrDuplicateFund
		}
		return models.Fund{}, err
	}
	return f, nil
}

// GetByID loads a fund by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Fund, error) {
	var f models.Fund
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns all funds sorted by folded name.
func (s *Store) List(ctx context.Context) ([]models.Fund, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var funds []models.Fund
	if err := cur.All(ctx, &funds); err != nil {
		return nil, err
	}
	return funds, nil
}

// UpdateBudget replaces a fund's target budget.
func (s *Store) UpdateBudget(ctx context.Context, id primitive.ObjectID, targetBudget decimal.Decimal) error {
	if targetBudget.IsNegative() {
		return ErrNegativeBudget
	}
	budget128, err := money.ToDecimal128(targetBudget)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"target_budget": budget128,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a fund. Transactions keep their fund_id; historical
// spending stays queryable even after the fund is gone.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
