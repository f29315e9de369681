// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectPaused    = "paused"
	ProjectCompleted = "completed"
)

// Project scopes accounts and transactions. Accounts and transactions
// reference it by id only; membership is authoritative here.
//
// MemberRoles optionally overrides a member's finance role inside this
// project (keyed by the member's ObjectID hex). Budget figures are
// aggregated for display and are never authoritative over any balance.
type Project struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"status" json:"status"`

	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"created_by"`
	MemberIDs   []primitive.ObjectID `bson:"member_ids,omitempty" json:"member_ids,omitempty"`
	MemberRoles map[string]string    `bson:"member_roles,omitempty" json:"member_roles,omitempty"`

	TargetBudget primitive.Decimal128 `bson:"target_budget,omitempty" json:"target_budget,omitempty"`
	Currency     string               `bson:"currency,omitempty" json:"currency,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsMember reports whether the user belongs to the project (creator counts).
func (p *Project) IsMember(userID primitive.ObjectID) bool {
	if p == nil {
		return false
	}
	if p.CreatedBy == userID {
		return true
	}
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
