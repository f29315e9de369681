// internal/app/features/transactions/handler.go
package transactions

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/ledger"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

// Handler serves the transaction API. All money movement goes through
// the ledger service; the handler only parses requests and shapes
// responses.
type Handler struct {
	Ledger       *ledger.Service
	Transactions *transactionstore.Store
	Users        *userstore.Store
	Log          *zap.Logger
}

func NewHandler(svc *ledger.Service, transactions *transactionstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Ledger:       svc,
		Transactions: transactions,
		Users:        users,
		Log:          logger,
	}
}

func (h *Handler) currentActor(ctx context.Context, r *http.Request) (models.User, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return models.User{}, false
	}
	uid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return models.User{}, false
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return models.User{}, false
	}
	return *u, true
}

func requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Medium())
}
