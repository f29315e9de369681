// internal/domain/models/fund.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fund is a budget-tracking dimension referenced weakly by transactions.
// It owns no balance; spending against a fund is always recomputed from
// the transactions collection at query time.
type Fund struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"`

	TargetBudget primitive.Decimal128 `bson:"target_budget" json:"target_budget"`
	Currency     string               `bson:"currency,omitempty" json:"currency,omitempty"`

	// Keywords drive classification suggestions when creating expenses.
	Keywords []string `bson:"keywords,omitempty" json:"keywords,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
