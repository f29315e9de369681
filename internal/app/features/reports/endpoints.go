// internal/app/features/reports/endpoints.go
package reports

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/features/apierrors"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/policy/ledgerpolicy"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/limits"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/rates"
)

type accountSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`

	// Converted is the balance in the requested report currency. Empty
	// when no conversion was requested or the rate was unavailable.
	Converted string `json:"converted,omitempty"`
}

type summaryResponse struct {
	Accounts []accountSummary `json:"accounts"`

	// TotalsByCurrency sums balances per native currency.
	TotalsByCurrency map[string]string `json:"totals_by_currency"`

	// ConvertedTotal is the grand total in the requested currency.
	// Omitted when any account could not be converted.
	Currency       string `json:"currency,omitempty"`
	ConvertedTotal string `json:"converted_total,omitempty"`

	// RatesDegraded marks a summary where one or more conversions
	// failed and the converted total could not be produced.
	RatesDegraded bool `json:"rates_degraded,omitempty"`
}

// ServeSummary handles GET /api/reports/summary. An optional currency
// parameter converts every balance through the exchange rate provider;
// when a rate is unavailable the summary degrades to native balances
// instead of failing.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	allowed, err := ledgerpolicy.CanViewReports(ctx, h.Projects, actor, nil)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	if !allowed {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}

	accounts, err := h.Accounts.List(ctx, "")
	if err != nil {
		h.Log.Error("report summary failed", zap.Error(err))
		apierrors.Error(w, err)
		return
	}

	reportCurrency := normalize.Currency(query.Get(r, "currency"))
	resp := summaryResponse{
		Accounts:         make([]accountSummary, 0, len(accounts)),
		TotalsByCurrency: map[string]string{},
		Currency:         reportCurrency,
	}

	totals := map[string]decimal.Decimal{}
	convertedTotal := decimal.Zero
	degraded := false

	for _, a := range accounts {
		balance, err := money.FromDecimal128(a.Balance)
		if err != nil {
			h.Log.Warn("unreadable account balance",
				zap.String("account_id", a.ID.Hex()), zap.Error(err))
			continue
		}
		row := accountSummary{
			ID:       a.ID.Hex(),
			Name:     a.Name,
			Type:     a.Type,
			Currency: a.Currency,
			Balance:  balance.String(),
		}
		totals[a.Currency] = totals[a.Currency].Add(balance)

		if reportCurrency != "" && h.Rates != nil {
			converted, err := h.convert(ctx, balance, a.Currency, reportCurrency)
			if err != nil {
				degraded = true
			} else {
				row.Converted = converted.String()
				convertedTotal = convertedTotal.Add(converted)
			}
		}
		resp.Accounts = append(resp.Accounts, row)
	}

	for currency, total := range totals {
		resp.TotalsByCurrency[currency] = total.String()
	}
	if reportCurrency != "" {
		if degraded || h.Rates == nil {
			resp.RatesDegraded = true
		} else {
			resp.ConvertedTotal = convertedTotal.String()
		}
	}
	apierrors.JSON(w, http.StatusOK, resp)
}

func (h *Handler) convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, err := h.Rates.Rate(ctx, from, to)
	if err != nil {
		if errors.Is(err, rates.ErrUnavailable) {
			h.Metrics.IncrRateLookupFailure()
			h.Log.Warn("exchange rate unavailable",
				zap.String("from", from), zap.String("to", to))
		}
		return decimal.Decimal{}, err
	}
	return amount.Mul(rate), nil
}

// ServeExport handles GET /api/reports/transactions.csv. The export
// honors the same filters as the transaction list and is capped at
// MaxExportRows.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	allowed, err := ledgerpolicy.CanViewReports(ctx, h.Projects, actor, nil)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	if !allowed {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}

	filter := transactionstore.Filter{Limit: limits.MaxExportRows}
	if v := query.Get(r, "account_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid account_id filter")
			return
		}
		filter.AccountID = &id
	}
	if v := query.Get(r, "project_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid project_id filter")
			return
		}
		filter.ProjectID = &id
	}
	if v := normalize.Status(query.Get(r, "status")); v != "" {
		filter.Status = v
	}
	if v := query.Get(r, "start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid start date")
			return
		}
		t = t.UTC()
		filter.Start = &t
	}
	if v := query.Get(r, "end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid end date")
			return
		}
		t = t.UTC().Add(24*time.Hour - time.Nanosecond)
		filter.End = &t
	}

	rows, err := h.Transactions.List(ctx, filter)
	if err != nil {
		h.Log.Error("transaction export failed", zap.Error(err))
		apierrors.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"id", "type", "amount", "currency", "category", "source",
		"account_id", "project_id", "fund_id", "status", "created_by",
		"created_at",
	})
	for _, tx := range rows {
		amount, _ := money.FromDecimal128(tx.Amount)
		record := []string{
			tx.ID.Hex(), tx.Type, amount.String(), tx.Currency,
			tx.Category, tx.Source, tx.AccountID.Hex(),
			"", "", tx.Status, tx.CreatedBy.Hex(),
			tx.CreatedAt.UTC().Format(time.RFC3339),
		}
		if tx.ProjectID != nil {
			record[7] = tx.ProjectID.Hex()
		}
		if tx.FundID != nil {
			record[8] = tx.FundID.Hex()
		}
		_ = cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Warn("csv export write failed", zap.Error(err))
	}
}
