// internal/app/features/transactions/types.go
package transactions

import (
	"time"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

// transactionView is the JSON shape transactions are returned in.
// Amounts are decimal strings, never floats.
type transactionView struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`

	Category string `json:"category,omitempty"`
	Source   string `json:"source,omitempty"`
	Note     string `json:"note,omitempty"`

	AccountID string `json:"account_id"`
	ProjectID string `json:"project_id,omitempty"`
	FundID    string `json:"fund_id,omitempty"`

	Status          string `json:"status"`
	CreatedBy       string `json:"created_by"`
	ApprovedBy      string `json:"approved_by,omitempty"`
	RejectedBy      string `json:"rejected_by,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`

	Images []string `json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toView(tx models.Transaction) transactionView {
	amount, _ := money.FromDecimal128(tx.Amount)
	v := transactionView{
		ID:              tx.ID.Hex(),
		Type:            tx.Type,
		Amount:          amount.String(),
		Currency:        tx.Currency,
		Category:        tx.Category,
		Source:          tx.Source,
		Note:            tx.Note,
		AccountID:       tx.AccountID.Hex(),
		Status:          tx.Status,
		CreatedBy:       tx.CreatedBy.Hex(),
		RejectionReason: tx.RejectionReason,
		Images:          tx.Images,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
	if tx.ProjectID != nil {
		v.ProjectID = tx.ProjectID.Hex()
	}
	if tx.FundID != nil {
		v.FundID = tx.FundID.Hex()
	}
	if tx.ApprovedBy != nil {
		v.ApprovedBy = tx.ApprovedBy.Hex()
	}
	if tx.RejectedBy != nil {
		v.RejectedBy = tx.RejectedBy.Hex()
	}
	return v
}

type listResponse struct {
	Transactions []transactionView `json:"transactions"`
	Page         int               `json:"page"`
	PerPage      int               `json:"per_page"`
	HasNext      bool              `json:"has_next"`
}
