// internal/app/features/reports/handler.go
package reports

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	accountstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/accounts"
	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/observability"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/rates"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Handler struct {
	Accounts     *accountstore.Store
	Transactions *transactionstore.Store
	Projects     *projectstore.Store
	Users        *userstore.Store
	Rates        *rates.Client
	Metrics      *observability.Metrics
	Log          *zap.Logger
}

func NewHandler(accounts *accountstore.Store, transactions *transactionstore.Store, projects *projectstore.Store, users *userstore.Store, ratesClient *rates.Client, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:     accounts,
		Transactions: transactions,
		Projects:     projects,
		Users:        users,
		Rates:        ratesClient,
		Metrics:      metrics,
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
	return context.WithTimeout(r.Context(), timeouts.Long())
}
