// internal/app/features/users/handler.go
//
// Admin endpoints for managing who holds which finance role.
package users

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/features/apierrors"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auditlog"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/authz"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/formutil"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/paging"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Handler struct {
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, AuditLog: auditLog, Log: logger}
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

func (h *Handler) requireAdmin(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return models.User{}, false
	}
	if authz.ResolveRole(actor) != authz.RoleAdmin {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return models.User{}, false
	}
	return actor, true
}

func requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Medium())
}

type userView struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Title       string `json:"title,omitempty"`
	FinanceRole string `json:"finance_role,omitempty"`

	// EffectiveRole is what ResolveRole yields, including legacy-title
	// fallbacks, so admins can see what a user can actually do.
	EffectiveRole string `json:"effective_role"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toView(u models.User) userView {
	return userView{
		ID:            u.ID.Hex(),
		FullName:      u.FullName,
		Email:         u.Email,
		Title:         u.Title,
		FinanceRole:   u.FinanceRole,
		EffectiveRole: authz.ResolveRole(u),
		Status:        u.Status,
		CreatedAt:     u.CreatedAt,
	}
}

// ServeList handles GET /api/users. Optional q matches names (or an
// exact email), status narrows to active/disabled.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	if _, ok := h.requireAdmin(ctx, w, r); !ok {
		return
	}

	page := paging.Parse(r)
	rows, err := h.Users.Search(ctx, query.Get(r, "q"), query.Get(r, "status"), page.LimitPlusOne()+int64(page.Offset))
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	if page.Offset < int64(len(rows)) {
		rows = rows[page.Offset:]
	} else {
		rows = nil
	}
	hasNext := paging.Trim(&rows, page)

	views := make([]userView, 0, len(rows))
	for _, u := range rows {
		views = append(views, toView(u))
	}
	apierrors.JSON(w, http.StatusOK, map[string]any{
		"users":    views,
		"page":     page.Number,
		"per_page": page.PerPage,
		"has_next": hasNext,
	})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// ServeSetRole handles PUT /api/users/{userID}/role.
func (h *Handler) ServeSetRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.requireAdmin(ctx, w, r)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req setRoleRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Users.SetFinanceRole(ctx, id, req.Role); err != nil {
		apierrors.Error(w, err)
		return
	}
	h.AuditLog.AdminAction(ctx, audit.EventUserRoleChanged, actor.ID, id, map[string]string{
		"role": req.Role,
	})

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, toView(*u))
}
