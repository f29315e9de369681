package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/ledger"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

func TestInitialStatus(t *testing.T) {
	cases := []struct {
		name     string
		txType   string
		currency string
		amount   string
		want     string
	}{
		{"income is never gated", models.TransactionIn, "VND", "999999999999", models.StatusApproved},
		{"vnd at threshold", models.TransactionOut, "VND", "5000000", models.StatusApproved},
		{"vnd just above threshold", models.TransactionOut, "VND", "5000001", models.StatusPending},
		{"usd at threshold", models.TransactionOut, "USD", "100", models.StatusApproved},
		{"usd just above threshold", models.TransactionOut, "USD", "100.01", models.StatusPending},
		{"khr at threshold", models.TransactionOut, "KHR", "100", models.StatusApproved},
		{"khr above threshold", models.TransactionOut, "KHR", "101", models.StatusPending},
		{"small expense", models.TransactionOut, "USD", "0.50", models.StatusApproved},
		{"unknown currency queues", models.TransactionOut, "EUR", "1", models.StatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ledger.InitialStatus(tc.txType, tc.currency, decimal.RequireFromString(tc.amount))
			if got != tc.want {
				t.Errorf("InitialStatus(%s, %s, %s) = %q, want %q", tc.txType, tc.currency, tc.amount, got, tc.want)
			}
		})
	}
}
