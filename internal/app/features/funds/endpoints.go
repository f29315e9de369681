// internal/app/features/funds/endpoints.go
package funds

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/features/apierrors"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/policy/ledgerpolicy"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/formutil"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type createRequest struct {
	Name         string   `json:"name"`
	TargetBudget string   `json:"target_budget"`
	Currency     string   `json:"currency"`
	Keywords     []string `json:"keywords"`
}

type updateBudgetRequest struct {
	TargetBudget string `json:"target_budget"`
}

// ServeCreate handles POST /api/funds.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !ledgerpolicy.CanManageAccounts(actor) {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}

	var req createRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if normalize.Name(req.Name) == "" {
		apierrors.Write(w, http.StatusBadRequest, "fund name is required")
		return
	}
	budget, err := money.ParseAmount(req.TargetBudget)
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid target budget")
		return
	}

	created, err := h.Funds.Create(ctx, models.Fund{
		Name:     req.Name,
		Currency: req.Currency,
		Keywords: req.Keywords,
	}, budget)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	h.AuditLog.AdminAction(ctx, audit.EventFundCreated, actor.ID, created.ID, map[string]string{
		"name":          created.Name,
		"target_budget": budget.String(),
	})
	apierrors.JSON(w, http.StatusCreated, toView(created))
}

// ServeList handles GET /api/funds.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	rows, err := h.Funds.List(ctx)
	if err != nil {
		h.Log.Error("fund list failed", zap.Error(err))
		apierrors.Error(w, err)
		return
	}
	views := make([]fundView, 0, len(rows))
	for _, f := range rows {
		views = append(views, toView(f))
	}
	apierrors.JSON(w, http.StatusOK, map[string]any{"funds": views})
}

// ServeUpdateBudget handles PUT /api/funds/{fundID}/budget.
func (h *Handler) ServeUpdateBudget(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !ledgerpolicy.CanManageAccounts(actor) {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "fundID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid fund id")
		return
	}

	var req updateBudgetRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	budget, err := money.ParseAmount(req.TargetBudget)
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid target budget")
		return
	}
	if err := h.Funds.UpdateBudget(ctx, id, budget); err != nil {
		apierrors.Error(w, err)
		return
	}
	h.AuditLog.AdminAction(ctx, audit.EventFundUpdated, actor.ID, id, map[string]string{
		"target_budget": budget.String(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// ServeBudget handles GET /api/funds/{fundID}/budget. Spending is
// recomputed from approved expense transactions at query time, never
// read from a stored counter. Optional start/end query parameters
// narrow the window.
func (h *Handler) ServeBudget(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "fundID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid fund id")
		return
	}
	fund, err := h.Funds.GetByID(ctx, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}

	var start, end *time.Time
	if v := query.Get(r, "start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid start date")
			return
		}
		t = t.UTC()
		start = &t
	}
	if v := query.Get(r, "end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid end date")
			return
		}
		t = t.UTC().Add(24*time.Hour - time.Nanosecond)
		end = &t
	}

	spent, err := h.Transactions.SumApprovedOutByFund(ctx, id, start, end)
	if err != nil {
		h.Log.Error("fund spending aggregation failed",
			zap.String("fund_id", id.Hex()), zap.Error(err))
		apierrors.Error(w, err)
		return
	}

	target, err := money.FromDecimal128(fund.TargetBudget)
	if err != nil {
		h.Log.Error("fund target budget is not decodable",
			zap.String("fund_id", id.Hex()), zap.Error(err))
		apierrors.Error(w, err)
		return
	}
	remaining := target.Sub(spent)
	resp := budgetResponse{
		FundID:       fund.ID.Hex(),
		Name:         fund.Name,
		Currency:     fund.Currency,
		TargetBudget: target.String(),
		Spent:        spent.String(),
		Remaining:    remaining.String(),
	}
	if target.Sign() > 0 {
		resp.PercentUsed = spent.Div(target).Mul(decimal.NewFromInt(100)).Round(2).String()
	}
	apierrors.JSON(w, http.StatusOK, resp)
}

// ServeDelete handles DELETE /api/funds/{fundID}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !ledgerpolicy.CanManageAccounts(actor) {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "fundID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid fund id")
		return
	}
	deleted, err := h.Funds.Delete(ctx, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	if deleted == 0 {
		apierrors.Write(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
