// internal/app/features/accounts/handler.go
package accounts

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	accountstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/accounts"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auditlog"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Handler struct {
	Accounts     *accountstore.Store
	Transactions *transactionstore.Store
	Users        *userstore.Store
	AuditLog     *auditlog.Logger
	Log          *zap.Logger
}

func NewHandler(accounts *accountstore.Store, transactions *transactionstore.Store, users *userstore.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:     accounts,
		Transactions: transactions,
		Users:        users,
		AuditLog:     auditLog,
		Log:          logger,
	}
}

// currentActor loads the full user record behind the session. Handlers
// need the record, not just the session claims, because role resolution
// reads the assigned role and legacy title fields.
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
