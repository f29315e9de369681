// internal/app/store/transactions/transactionstore.go
package transactionstore

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("transactions")}
}

// Insert writes a new transaction document. The caller decides the
// initial status; Insert only stamps identity and times.
func (s *Store) Insert(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, tx); err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

// GetByID loads a transaction by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// MarkApproved flips a pending transaction to approved. The filter
// includes the pending status, so of two racing deciders exactly one
// sees moved=true; the loser re-reads to find out what happened.
func (s *Store) MarkApproved(ctx context.Context, id, approverID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusPending},
		bson.M{"$set": bson.M{
			"status":      models.StatusApproved,
			"approved_by": approverID,
			"updated_at":  time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// MarkRejected flips a pending transaction to rejected with a reason.
// Same CAS semantics as MarkApproved.
func (s *Store) MarkRejected(ctx context.Context, id, rejecterID primitive.ObjectID, reason string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusPending},
		bson.M{"$set": bson.M{
			"status":           models.StatusRejected,
			"rejected_by":      rejecterID,
			"rejection_reason": reason,
			"updated_at":       time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// Filter narrows List results. Zero fields are ignored.
type Filter struct {
	AccountID *primitive.ObjectID
	ProjectID *primitive.ObjectID
	FundID    *primitive.ObjectID
	CreatedBy *primitive.ObjectID
	Status    string
	Type      string
	Start     *time.Time
	End       *time.Time
	Limit     int64
	Offset    int64
}

func (f Filter) query() bson.M {
	query := bson.M{}
	if f.AccountID != nil {
		query["account_id"] = f.AccountID
	}
	if f.ProjectID != nil {
		query["project_id"] = f.ProjectID
	}
	if f.FundID != nil {
		query["fund_id"] = f.FundID
	}
	if f.CreatedBy != nil {
		query["created_by"] = f.CreatedBy
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Type != "" {
		query["type"] = f.Type
	}
	if f.Start != nil || f.End != nil {
		timeQuery := bson.M{}
		if f.Start != nil {
			timeQuery["$gte"] = *f.Start
		}
		if f.End != nil {
			timeQuery["$lt"] = *f.End
		}
		query["created_at"] = timeQuery
	}
	return query
}

// List returns transactions matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]models.Transaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var txs []models.Transaction
	if err := cur.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Count returns the number of transactions matching the filter.
func (s *Store) Count(ctx context.Context, filter Filter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// sumRow is one $group bucket from the totals pipelines.
type sumRow struct {
	ID    string               `bson:"_id"`
	Total primitive.Decimal128 `bson:"total"`
}

// SumApprovedByAccount totals approved amounts per direction for one
// account. Pending and rejected transactions never count.
func (s *Store) SumApprovedByAccount(ctx context.Context, accountID primitive.ObjectID) (in, out decimal.Decimal, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"account_id": accountID,
			"status":     models.StatusApproved,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$type",
			"total": bson.M{"$sum": "$amount"},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	defer cur.Close(ctx)

	in, out = decimal.Zero, decimal.Zero
	for cur.Next(ctx) {
		var row sumRow
		if err := cur.Decode(&row); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		total, err := money.FromDecimal128(row.Total)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		switch row.ID {
		case models.TransactionIn:
			in = total
		case models.TransactionOut:
			out = total
		}
	}
	return in, out, cur.Err()
}

// SumApprovedOutByFund totals approved expense amounts charged to a fund
// within [start, end). Spending is always recomputed from this query;
// funds carry no running total that could drift.
func (s *Store) SumApprovedOutByFund(ctx context.Context, fundID primitive.ObjectID, start, end *time.Time) (decimal.Decimal, error) {
	match := bson.M{
		"fund_id": fundID,
		"status":  models.StatusApproved,
		"type":    models.TransactionOut,
	}
	if start != nil || end != nil {
		timeQuery := bson.M{}
		if start != nil {
			timeQuery["$gte"] = *start
		}
		if end != nil {
			timeQuery["$lt"] = *end
		}
		match["created_at"] = timeQuery
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "out",
			"total": bson.M{"$sum": "$amount"},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return decimal.Zero, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row sumRow
		if err := cur.Decode(&row); err != nil {
			return decimal.Zero, err
		}
		return money.FromDecimal128(row.Total)
	}
	return decimal.Zero, cur.Err()
}
