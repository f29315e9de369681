// internal/app/features/apierrors/apierrors.go
//
// Package apierrors maps domain errors to JSON HTTP responses. Every
// feature handler goes through Error or Write so the error body shape
// stays uniform across the API.
package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/ledger"
	accountstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/accounts"
	fundstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/funds"
	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	revenuestore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/revenues"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
)

type errorBody struct {
	Error string `json:"error"`
}

// Write sends a JSON error body with the given status.
func Write(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}

// JSON sends v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Status maps a domain error to an HTTP status code. Unknown errors
// map to 500.
func Status(err error) int {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidType),
		errors.Is(err, ledger.ErrReasonRequired),
		errors.Is(err, ledger.ErrProjectMismatch):
		return http.StatusBadRequest
	case errors.Is(err, accountstore.ErrBadType),
		errors.Is(err, userstore.ErrBadRole),
		errors.Is(err, userstore.ErrBadStatus),
		errors.Is(err, projectstore.ErrBadStatus),
		errors.Is(err, fundstore.ErrNegativeBudget):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotPending),
		errors.Is(err, ledger.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, accountstore.ErrAccountLocked),
		errors.Is(err, accountstore.ErrCurrencyMismatch),
		errors.Is(err, accountstore.ErrCategoryBlocked),
		errors.Is(err, accountstore.ErrHasTransactions),
		errors.Is(err, accountstore.ErrNonZeroBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, accountstore.ErrDuplicateAccount),
		errors.Is(err, projectstore.ErrDuplicateProject),
		errors.Is(err, fundstore.ErrDuplicateFund),
		errors.Is(err, revenuestore.ErrDuplicateRevenue),
		errors.Is(err, userstore.ErrDuplicateEmail):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error response with the mapped status.
// Internal errors hide the underlying message.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	if status == http.StatusNotFound {
		msg = "not found"
	}
	Write(w, status, msg)
}
