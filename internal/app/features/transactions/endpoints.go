// internal/app/features/transactions/endpoints.go
package transactions

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/features/apierrors"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/ledger"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/formutil"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/paging"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type createRequest struct {
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Note     string `json:"note"`

	AccountID string `json:"account_id"`
	ProjectID string `json:"project_id"`
	FundID    string `json:"fund_id"`

	Images []string `json:"images"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// ServeCreate handles POST /api/transactions.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid amount")
		return
	}
	accountID, err := primitive.ObjectIDFromHex(req.AccountID)
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid account id")
		return
	}

	in := ledger.CreateInput{
		Type:      req.Type,
		Amount:    amount,
		Currency:  req.Currency,
		Category:  req.Category,
		Source:    req.Source,
		Note:      req.Note,
		AccountID: accountID,
		Images:    req.Images,
	}
	if req.ProjectID != "" {
		pid, err := primitive.ObjectIDFromHex(req.ProjectID)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid project id")
			return
		}
		in.ProjectID = &pid
	}
	if req.FundID != "" {
		fid, err := primitive.ObjectIDFromHex(req.FundID)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid fund id")
			return
		}
		in.FundID = &fid
	}

	tx, err := h.Ledger.Create(ctx, actor, in)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	apierrors.JSON(w, http.StatusCreated, toView(tx))
}

// ServeList handles GET /api/transactions. Filters come from query
// parameters; results are newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, err.Error())
		return
	}
	page := paging.Parse(r)
	filter.Limit = page.LimitPlusOne()
	filter.Offset = int64(page.Offset)

	rows, err := h.Ledger.List(ctx, actor, filter)
	if err != nil {
		h.Log.Error("transaction list failed", zap.Error(err))
		apierrors.Error(w, err)
		return
	}
	hasNext := paging.Trim(&rows, page)

	views := make([]transactionView, 0, len(rows))
	for _, tx := range rows {
		views = append(views, toView(tx))
	}
	apierrors.JSON(w, http.StatusOK, listResponse{
		Transactions: views,
		Page:         page.Number,
		PerPage:      page.PerPage,
		HasNext:      hasNext,
	})
}

// ServeGet handles GET /api/transactions/{txID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "txID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	tx, err := h.Transactions.GetByID(ctx, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, toView(*tx))
}

// ServeApprove handles POST /api/transactions/{txID}/approve.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "txID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := h.Ledger.Approve(ctx, actor, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, toView(*tx))
}

// ServeReject handles POST /api/transactions/{txID}/reject.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "txID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var req rejectRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.Ledger.Reject(ctx, actor, id, req.Reason)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, toView(*tx))
}

// filterFromQuery builds a store filter from list query parameters.
// Dates accept either RFC 3339 or plain YYYY-MM-DD; a date-only end is
// pushed to the end of that day so the range is inclusive.
func filterFromQuery(r *http.Request) (transactionstore.Filter, error) {
	var f transactionstore.Filter

	if v := query.Get(r, "account_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, errBadFilter("account_id")
		}
		f.AccountID = &id
	}
	if v := query.Get(r, "project_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, errBadFilter("project_id")
		}
		f.ProjectID = &id
	}
	if v := query.Get(r, "fund_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, errBadFilter("fund_id")
		}
		f.FundID = &id
	}
	if v := query.Get(r, "created_by"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, errBadFilter("created_by")
		}
		f.CreatedBy = &id
	}

	if v := normalize.Status(query.Get(r, "status")); v != "" {
		switch v {
		case models.StatusPending, models.StatusApproved, models.StatusRejected:
			f.Status = v
		default:
			return f, errBadFilter("status")
		}
	}
	if v := normalize.TransactionType(query.Get(r, "type")); v != "" {
		switch v {
		case models.TransactionIn, models.TransactionOut:
			f.Type = v
		default:
			return f, errBadFilter("type")
		}
	}

	if v := query.Get(r, "start"); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			return f, errBadFilter("start")
		}
		f.Start = &t
	}
	if v := query.Get(r, "end"); v != "" {
		t, dateOnly, err := parseDate(v)
		if err != nil {
			return f, errBadFilter("end")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.End = &t
	}
	return f, nil
}

func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	return t.UTC(), false, err
}

type errBadFilter string

func (e errBadFilter) Error() string { return "invalid " + string(e) + " filter" }
