// internal/app/features/auditlog/handler.go
//
// Admin-only access to the audit trail.
package auditlog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/features/apierrors"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/authz"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/paging"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Handler struct {
	Audit *audit.Store
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(auditStore *audit.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Audit: auditStore, Users: users, Log: logger}
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

type eventView struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	Action        string            `json:"action"`
	UserID        string            `json:"user_id,omitempty"`
	TargetID      string            `json:"target_id,omitempty"`
	IP            string            `json:"ip,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

func toView(e audit.Event) eventView {
	v := eventView{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		Action:        e.Action,
		IP:            e.IP,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
	if e.UserID != nil {
		v.UserID = e.UserID.Hex()
	}
	if e.TargetID != nil {
		v.TargetID = e.TargetID.Hex()
	}
	return v
}

// ServeQuery handles GET /api/audit. Newest events first.
func (h *Handler) ServeQuery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if authz.ResolveRole(actor) != authz.RoleAdmin {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}

	page := paging.Parse(r)
	filter := audit.QueryFilter{
		Category: query.Get(r, "category"),
		Action:   query.Get(r, "action"),
		Limit:    page.LimitPlusOne(),
		Offset:   int64(page.Offset),
	}
	if v := query.Get(r, "user_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid user_id filter")
			return
		}
		filter.UserID = &id
	}
	if v := query.Get(r, "target_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid target_id filter")
			return
		}
		filter.TargetID = &id
	}

	rows, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.Log.Error("audit query failed", zap.Error(err))
		apierrors.Error(w, err)
		return
	}
	hasNext := paging.Trim(&rows, page)

	views := make([]eventView, 0, len(rows))
	for _, e := range rows {
		views = append(views, toView(e))
	}
	apierrors.JSON(w, http.StatusOK, map[string]any{
		"events":   views,
		"page":     page.Number,
		"per_page": page.PerPage,
		"has_next": hasNext,
	})
}
