// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the caller identity handed to every ledger operation.
//
// NOTE:
//   - Project membership is not embedded on User.
//     Use the projects collection's member list to discover a user's projects.
//   - FinanceRole is the explicitly assigned role ("admin" … "staff",
//     or "none"/"" when unassigned). Title carries the legacy free-text
//     job title that older records used before FinanceRole existed; the
//     authz resolver falls back to matching keywords in it.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName    string             `bson:"full_name" json:"full_name"`
	FullNameCI  string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email       string             `bson:"email" json:"email"`
	FinanceRole string             `bson:"finance_role,omitempty" json:"finance_role,omitempty"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty"`
	Status      string             `bson:"status,omitempty" json:"status,omitempty"`

	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
