package reports_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/features/reports"
	accountstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/accounts"
	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/rates"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
	"github.com/quantrinhansu123/finance-up-sub001/internal/testutil"
)

func setup(t *testing.T, ratesClient *rates.Client) (*reports.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	h := reports.NewHandler(
		accountstore.New(db, log),
		transactionstore.New(db),
		projectstore.New(db),
		userstore.New(db),
		ratesClient,
		nil,
		log,
	)
	return h, testutil.NewFixtures(t, db)
}

func asUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.FinanceRole}
}

func TestServeSummary_NativeTotals(t *testing.T) {
	h, f := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	treasurer := f.CreateUser(ctx, "Treasurer", "t@example.com", "treasurer")
	f.CreateAccount(ctx, "Bank A", models.AccountBank, "VND", "5000000")
	f.CreateAccount(ctx, "Bank B", models.AccountBank, "VND", "3000000")
	f.CreateAccount(ctx, "USD Wallet", models.AccountEWallet, "USD", "120")

	req := testutil.WithUser(httptest.NewRequest("GET", "/api/reports/summary", nil), asUser(treasurer))
	rec := httptest.NewRecorder()
	h.ServeSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"VND":"8000000"`) {
		t.Errorf("body = %s, want VND total", body)
	}
	if !strings.Contains(body, `"USD":"120"`) {
		t.Errorf("body = %s, want USD total", body)
	}
}

func TestServeSummary_StaffForbidden(t *testing.T) {
	h, f := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	staff := f.CreateUser(ctx, "Staff", "s@example.com", "staff")

	req := testutil.WithUser(httptest.NewRequest("GET", "/api/reports/summary", nil), asUser(staff))
	rec := httptest.NewRecorder()
	h.ServeSummary(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestServeSummary_ConvertedTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("base") != "VND" {
			http.Error(w, "unknown base", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"VND","rates":{"USD":"0.00004"}}`))
	}))
	defer srv.Close()

	h, f := setup(t, rates.NewClient(srv.URL, time.Minute, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()
	treasurer := f.CreateUser(ctx, "Treasurer", "t@example.com", "treasurer")
	f.CreateAccount(ctx, "Bank A", models.AccountBank, "VND", "5000000")
	f.CreateAccount(ctx, "USD Wallet", models.AccountEWallet, "USD", "100")

	req := testutil.WithUser(httptest.NewRequest("GET", "/api/reports/summary?currency=usd", nil), asUser(treasurer))
	rec := httptest.NewRecorder()
	h.ServeSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	// 5,000,000 VND * 0.00004 = 200 USD, plus 100 USD held natively.
	if !strings.Contains(rec.Body.String(), `"converted_total":"300"`) {
		t.Errorf("body = %s, want converted grand total", rec.Body.String())
	}
}

func TestServeSummary_DegradesWhenRatesDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h, f := setup(t, rates.NewClient(srv.URL, time.Minute, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()
	treasurer := f.CreateUser(ctx, "Treasurer", "t@example.com", "treasurer")
	f.CreateAccount(ctx, "Bank A", models.AccountBank, "VND", "5000000")
	f.CreateAccount(ctx, "USD Wallet", models.AccountEWallet, "USD", "100")

	req := testutil.WithUser(httptest.NewRequest("GET", "/api/reports/summary?currency=usd", nil), asUser(treasurer))
	rec := httptest.NewRecorder()
	h.ServeSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want degraded 200, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"rates_degraded":true`) {
		t.Errorf("body = %s, want degraded marker", body)
	}
	if strings.Contains(body, `"converted_total"`) {
		t.Errorf("body = %s, partial converted total leaked", body)
	}
	if !strings.Contains(body, `"VND":"5000000"`) {
		t.Errorf("body = %s, native totals must survive rate outage", body)
	}
}

func TestServeExport_CSV(t *testing.T) {
	h, f := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	treasurer := f.CreateUser(ctx, "Treasurer", "t@example.com", "treasurer")
	account := f.CreateAccount(ctx, "Main", models.AccountBank, "VND", "0")
	f.CreateTransaction(ctx, account.ID, models.TransactionIn, "1000000", "VND", models.StatusApproved)
	f.CreateTransaction(ctx, account.ID, models.TransactionOut, "250000", "VND", models.StatusPending)

	req := testutil.WithUser(httptest.NewRequest("GET", "/api/reports/transactions.csv?status=pending", nil), asUser(treasurer))
	rec := httptest.NewRecorder()
	h.ServeExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "id,type,amount,currency") {
		t.Errorf("body = %s, want header row", body)
	}
	if !strings.Contains(body, "250000") {
		t.Errorf("body = %s, want pending expense row", body)
	}
	if strings.Contains(body, "1000000") {
		t.Errorf("body = %s, approved row leaked into pending filter", body)
	}
}
