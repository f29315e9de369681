// internal/app/features/accounts/types.go
package accounts

import (
	"time"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

// accountView is the JSON shape accounts are returned in. Amounts are
// decimal strings, never floats.
type accountView struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Currency          string   `json:"currency"`
	Balance           string   `json:"balance"`
	OpeningBalance    string   `json:"opening_balance"`
	IsLocked          bool     `json:"is_locked"`
	RestrictCurrency  bool     `json:"restrict_currency"`
	AllowedCategories []string `json:"allowed_categories,omitempty"`
	ProjectID         string   `json:"project_id,omitempty"`

	// Approved turnover, filled on detail views only.
	TotalIn  string `json:"total_in,omitempty"`
	TotalOut string `json:"total_out,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toView(a models.Account) accountView {
	balance, _ := money.FromDecimal128(a.Balance)
	opening, _ := money.FromDecimal128(a.OpeningBalance)
	v := accountView{
		ID:                a.ID.Hex(),
		Name:              a.Name,
		Type:              a.Type,
		Currency:          a.Currency,
		Balance:           balance.String(),
		OpeningBalance:    opening.String(),
		IsLocked:          a.IsLocked,
		RestrictCurrency:  a.RestrictCurrency,
		AllowedCategories: a.AllowedCategories,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.ProjectID != nil {
		v.ProjectID = a.ProjectID.Hex()
	}
	return v
}
