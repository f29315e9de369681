package rates_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/rates"
	"github.com/quantrinhansu123/finance-up-sub001/internal/testutil"
)

func newProvider(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		if r.URL.Query().Get("base") != "USD" {
			http.Error(w, "unknown base", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","rates":{"VND":"24500","KHR":"4100.5"}}`))
	}))
}

func TestRate_FetchAndParse(t *testing.T) {
	var hits int64
	srv := newProvider(t, &hits)
	defer srv.Close()

	c := rates.NewClient(srv.URL, time.Minute, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	rate, err := c.Rate(ctx, "USD", "VND")
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("24500")) {
		t.Errorf("rate = %s, want 24500", rate)
	}
}

func TestRate_CachesWholeResponse(t *testing.T) {
	var hits int64
	srv := newProvider(t, &hits)
	defer srv.Close()

	c := rates.NewClient(srv.URL, time.Minute, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := c.Rate(ctx, "USD", "VND"); err != nil {
		t.Fatalf("first Rate: %v", err)
	}
	// Second pair from the same response should not hit the provider.
	if _, err := c.Rate(ctx, "USD", "KHR"); err != nil {
		t.Fatalf("second Rate: %v", err)
	}
	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Errorf("provider hit %d times, want 1", n)
	}
}

func TestRate_SameCurrency(t *testing.T) {
	c := rates.NewClient("http://127.0.0.1:0", time.Minute, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rate, err := c.Rate(ctx, "VND", "VND")
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("same-currency rate = %s, want 1", rate)
	}
}

func TestRate_ProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := rates.NewClient(srv.URL, time.Minute, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := c.Rate(ctx, "USD", "VND")
	if !errors.Is(err, rates.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestRate_UnknownTarget(t *testing.T) {
	var hits int64
	srv := newProvider(t, &hits)
	defer srv.Close()

	c := rates.NewClient(srv.URL, time.Minute, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := c.Rate(ctx, "USD", "EUR")
	if !errors.Is(err, rates.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for missing pair, got %v", err)
	}
}
