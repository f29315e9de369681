// internal/app/features/accounts/endpoints.go
package accounts

import (
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
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
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Currency          string   `json:"currency"`
	OpeningBalance    string   `json:"opening_balance"`
	RestrictCurrency  bool     `json:"restrict_currency"`
	AllowedCategories []string `json:"allowed_categories"`
	ProjectID         string   `json:"project_id"`
}

// ServeCreate handles POST /api/accounts.
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
		apierrors.Write(w, http.StatusBadRequest, "account name is required")
		return
	}

	opening := decimal.Zero
	if req.OpeningBalance != "" {
		var err error
		opening, err = money.ParseAmount(req.OpeningBalance)
		if err != nil || opening.IsNegative() {
			apierrors.Write(w, http.StatusBadRequest, "invalid opening balance")
			return
		}
	}

	a := models.Account{
		Name:              req.Name,
		Type:              req.Type,
		Currency:          req.Currency,
		RestrictCurrency:  req.RestrictCurrency,
		AllowedCategories: req.AllowedCategories,
		CreatedBy:         actor.ID,
	}
	if req.ProjectID != "" {
		pid, err := primitive.ObjectIDFromHex(req.ProjectID)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid project id")
			return
		}
		a.ProjectID = &pid
	}

	created, err := h.Accounts.Create(ctx, a, opening)
	if err != nil {
		apierrors.Error(w, err)
		return
	}

	h.AuditLog.Emit(ctx, audit.Event{
		Category: audit.CategoryAdmin,
		Action:   audit.EventAccountCreated,
		UserID:   &actor.ID,
		TargetID: &created.ID,
		Success:  true,
		Details: map[string]string{
			"name":            created.Name,
			"currency":        created.Currency,
			"opening_balance": opening.String(),
		},
	})
	apierrors.JSON(w, http.StatusCreated, toView(created))
}

// ServeList handles GET /api/accounts?type=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	list, err := h.Accounts.List(ctx, query.Get(r, "type"))
	if err != nil {
		h.Log.Error("accounts: list", zap.Error(err))
		apierrors.Error(w, err)
		return
	}
	views := make([]accountView, 0, len(list))
	for _, a := range list {
		views = append(views, toView(a))
	}
	apierrors.JSON(w, http.StatusOK, views)
}

// ServeGet handles GET /api/accounts/{accountID}. The response carries
// the account's approved turnover, recomputed from the transactions
// collection on every call.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "accountID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid account id")
		return
	}
	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}

	v := toView(*a)
	in, out, err := h.Transactions.SumApprovedByAccount(ctx, id)
	if err != nil {
		h.Log.Error("accounts: turnover", zap.Error(err))
	} else {
		v.TotalIn = in.String()
		v.TotalOut = out.String()
	}
	apierrors.JSON(w, http.StatusOK, v)
}

type updateRequest struct {
	Name              string   `json:"name"`
	RestrictCurrency  bool     `json:"restrict_currency"`
	AllowedCategories []string `json:"allowed_categories"`
}

// ServeUpdate handles PUT /api/accounts/{accountID}. The currency, type
// and opening balance are immutable after creation.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
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
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "accountID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req updateRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Accounts.Update(ctx, id, req.Name, req.RestrictCurrency, req.AllowedCategories); err != nil {
		apierrors.Error(w, err)
		return
	}

	h.AuditLog.Emit(ctx, audit.Event{
		Category: audit.CategoryAdmin,
		Action:   audit.EventAccountUpdated,
		UserID:   &actor.ID,
		TargetID: &id,
		Success:  true,
	})
	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, toView(*a))
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

// ServeLock handles POST /api/accounts/{accountID}/lock.
func (h *Handler) ServeLock(w http.ResponseWriter, r *http.Request) {
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
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "accountID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req lockRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Accounts.SetLocked(ctx, id, req.Locked); err != nil {
		apierrors.Error(w, err)
		return
	}

	action := audit.EventAccountUnlocked
	if req.Locked {
		action = audit.EventAccountLocked
	}
	h.AuditLog.Emit(ctx, audit.Event{
		Category: audit.CategoryAdmin,
		Action:   action,
		UserID:   &actor.ID,
		TargetID: &id,
		Success:  true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// ServeDelete handles DELETE /api/accounts/{accountID}. Deletion is
// refused while any transaction references the account, and after that
// while the balance is non-zero.
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
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "accountID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := h.Accounts.Delete(ctx, id); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Warn("accounts: delete refused", zap.String("account_id", id.Hex()), zap.Error(err))
		}
		apierrors.Error(w, err)
		return
	}

	h.AuditLog.Emit(ctx, audit.Event{
		Category: audit.CategoryAdmin,
		Action:   audit.EventAccountDeleted,
		UserID:   &actor.ID,
		TargetID: &id,
		Success:  true,
	})
	w.WriteHeader(http.StatusNoContent)
}
