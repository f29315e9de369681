// internal/domain/models/revenue.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Revenue is a catalog entry describing an income source. Income
// transactions reference a revenue source by name; the catalog exists so
// the transaction form can suggest consistent source labels.
type Revenue struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"`

	Keywords []string `bson:"keywords,omitempty" json:"keywords,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
