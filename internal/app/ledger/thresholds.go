// internal/app/ledger/thresholds.go
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

// autoApprovalThresholds is the per-currency ceiling for expenses that
// skip the human approval queue. An outgoing transaction strictly above
// its currency's threshold starts out pending; at or below it, the
// transaction is approved and applied immediately. Currencies not listed
// here always queue for approval.
var autoApprovalThresholds = map[string]decimal.Decimal{
	"VND": decimal.NewFromInt(5_000_000),
	"USD": decimal.NewFromInt(100),
	"KHR": decimal.NewFromInt(100),
}

// InitialStatus computes the status a new transaction starts in.
// Income is never gated; expenses are gated by the currency threshold.
func InitialStatus(txType, currency string, amount decimal.Decimal) string {
	if txType == models.TransactionIn {
		return models.StatusApproved
	}
	threshold, ok := autoApprovalThresholds[currency]
	if !ok {
		return models.StatusPending
	}
	if amount.GreaterThan(threshold) {
		return models.StatusPending
	}
	return models.StatusApproved
}
