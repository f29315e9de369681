// internal/domain/models/transaction.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types.
const (
	TransactionIn  = "in"
	TransactionOut = "out"
)

// Transaction statuses. Pending may move to approved or rejected exactly
// once; approved and rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Transaction is a single income or expense entry against an account.
//
// Category is set for expenses, Source for income. ProjectID and FundID
// are weak references used for scoping and reporting. Images are opaque
// receipt URLs; the ledger stores and returns them without interpreting
// their content.
//
// BalanceApplied flips to true exactly once, when this transaction's
// signed amount is folded into the account balance. It is the idempotency
// guard for balance application.
type Transaction struct {
	ID       primitive.ObjectID   `bson:"_id" json:"id"`
	Type     string               `bson:"type" json:"type"`
	Amount   primitive.Decimal128 `bson:"amount" json:"amount"`
	Currency string               `bson:"currency" json:"currency"`

	Category string `bson:"category,omitempty" json:"category,omitempty"`
	Source   string `bson:"source,omitempty" json:"source,omitempty"`
	Note     string `bson:"note,omitempty" json:"note,omitempty"`

	AccountID primitive.ObjectID  `bson:"account_id" json:"account_id"`
	ProjectID *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	FundID    *primitive.ObjectID `bson:"fund_id,omitempty" json:"fund_id,omitempty"`

	Status         string `bson:"status" json:"status"`
	BalanceApplied bool   `bson:"balance_applied" json:"-"`

	CreatedBy       primitive.ObjectID  `bson:"created_by" json:"created_by"`
	ApprovedBy      *primitive.ObjectID `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	RejectedBy      *primitive.ObjectID `bson:"rejected_by,omitempty" json:"rejected_by,omitempty"`
	RejectionReason string              `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`

	Images []string `bson:"images,omitempty" json:"images,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the transaction has left the pending state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusApproved || t.Status == StatusRejected
}
