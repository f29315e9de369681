// internal/app/features/revenues/handler.go
//
// Revenue sources name where income comes from (sponsors, ticket
// sales, grants). Keywords attached to a source drive classification
// suggestions when income is recorded.
package revenues

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/features/apierrors"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/policy/ledgerpolicy"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	revenuestore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/revenues"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auditlog"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/formutil"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Handler struct {
	Revenues *revenuestore.Store
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(revenues *revenuestore.Store, users *userstore.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Revenues: revenues,
		Users:    users,
		AuditLog: auditLog,
		Log:      logger,
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

type createRequest struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// ServeCreate handles POST /api/revenues.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !ledgerpolicy.CanManageAccounts(actor) {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}

	var req createRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if normalize.Name(req.Name) == "" {
		apierrors.Write(w, http.StatusBadRequest, "revenue source name is required")
		return
	}

	created, err := h.Revenues.Create(ctx, models.Revenue{
		Name:     req.Name,
		Keywords: req.Keywords,
	})
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	h.AuditLog.AdminAction(ctx, audit.EventRevenueCreated, actor.ID, created.ID, map[string]string{
		"name": created.Name,
	})
	apierrors.JSON(w, http.StatusCreated, created)
}

// ServeList handles GET /api/revenues. An optional q parameter
// switches to keyword suggestion matching.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	var (
		rows []models.Revenue
		err  error
	)
	if q := query.Get(r, "q"); q != "" {
		rows, err = h.Revenues.Suggest(ctx, q)
	} else {
		rows, err = h.Revenues.List(ctx)
	}
	if err != nil {
		h.Log.Error("revenue list failed", zap.Error(err))
		apierrors.Error(w, err)
		return
	}
	if rows == nil {
		rows = []models.Revenue{}
	}
	apierrors.JSON(w, http.StatusOK, map[string]any{"revenues": rows})
}

// ServeDelete handles DELETE /api/revenues/{revenueID}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !ledgerpolicy.CanManageAccounts(actor) {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "revenueID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid revenue source id")
		return
	}
	deleted, err := h.Revenues.Delete(ctx, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	if deleted == 0 {
		apierrors.Write(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
