// internal/app/features/funds/handler.go
package funds

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	fundstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/funds"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auditlog"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Handler struct {
	Funds        *fundstore.Store
	Transactions *transactionstore.Store
	Users        *userstore.Store
	AuditLog     *auditlog.Logger
	Log          *zap.Logger
}

func NewHandler(funds *fundstore.Store, transactions *transactionstore.Store, users *userstore.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Funds:        funds,
		Transactions: transactions,
		Users:        users,
		AuditLog:     auditLog,
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
