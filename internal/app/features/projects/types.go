// internal/app/features/projects/types.go
package projects

import (
	"time"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type projectView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`

	CreatedBy   string            `json:"created_by"`
	MemberIDs   []string          `json:"member_ids,omitempty"`
	MemberRoles map[string]string `json:"member_roles,omitempty"`

	TargetBudget string `json:"target_budget,omitempty"`
	Currency     string `json:"currency,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toView(p models.Project) projectView {
	v := projectView{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		CreatedBy:   p.CreatedBy.Hex(),
		MemberRoles: p.MemberRoles,
		Currency:    p.Currency,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, id := range p.MemberIDs {
		v.MemberIDs = append(v.MemberIDs, id.Hex())
	}
	if budget, err := money.FromDecimal128(p.TargetBudget); err == nil && !budget.IsZero() {
		v.TargetBudget = budget.String()
	}
	return v
}
