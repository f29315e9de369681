// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account types.
const (
	AccountBank    = "bank"
	AccountCash    = "cash"
	AccountEWallet = "e-wallet"
)

// Account holds money in a single currency.
//
// Balance is authoritative and is mutated exclusively through the account
// store's AdjustBalance; it must always equal OpeningBalance plus the sum
// of signed amounts of this account's approved transactions.
// OpeningBalance is immutable after creation.
type Account struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"name_ci"`
	Type     string             `bson:"type" json:"type"`
	Currency string             `bson:"currency" json:"currency"`

	Balance        primitive.Decimal128 `bson:"balance" json:"balance"`
	OpeningBalance primitive.Decimal128 `bson:"opening_balance" json:"opening_balance"`

	IsLocked bool `bson:"is_locked" json:"is_locked"`

	// RestrictCurrency forces transaction currency to match the account's.
	// AllowedCategories, when non-empty, is an allow-list for expense
	// categories. Both are checked at transaction-creation time.
	RestrictCurrency  bool     `bson:"restrict_currency,omitempty" json:"restrict_currency,omitempty"`
	AllowedCategories []string `bson:"allowed_categories,omitempty" json:"allowed_categories,omitempty"`

	ProjectID *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	CreatedBy primitive.ObjectID  `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
