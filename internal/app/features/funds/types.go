// internal/app/features/funds/types.go
package funds

import (
	"time"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type fundView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TargetBudget string    `json:"target_budget"`
	Currency     string    `json:"currency,omitempty"`
	Keywords     []string  `json:"keywords,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toView(f models.Fund) fundView {
	budget, _ := money.FromDecimal128(f.TargetBudget)
	return fundView{
		ID:           f.ID.Hex(),
		Name:         f.Name,
		TargetBudget: budget.String(),
		Currency:     f.Currency,
		Keywords:     f.Keywords,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// budgetResponse is the recomputed spending snapshot for one fund.
type budgetResponse struct {
	FundID       string `json:"fund_id"`
	Name         string `json:"name"`
	Currency     string `json:"currency,omitempty"`
	TargetBudget string `json:"target_budget"`
	Spent        string `json:"spent"`
	Remaining    string `json:"remaining"`
	PercentUsed  string `json:"percent_used,omitempty"`
}
