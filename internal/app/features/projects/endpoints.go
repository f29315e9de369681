// internal/app/features/projects/endpoints.go
package projects

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/features/apierrors"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/policy/ledgerpolicy"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/authz"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/formutil"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/htmlsanitize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type createRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	TargetBudget string `json:"target_budget"`
	Currency     string `json:"currency"`
}

type updateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Currency    string `json:"currency"`
}

type memberRequest struct {
	UserID string `json:"user_id"`
}

type memberRoleRequest struct {
	Role string `json:"role"`
}

// ServeCreate handles POST /api/projects. The creator is added as the
// first member.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !canCreateProject(actor) {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}

	var req createRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if normalize.Name(req.Name) == "" {
		apierrors.Write(w, http.StatusBadRequest, "project name is required")
		return
	}

	p := models.Project{
		Name:        req.Name,
		Description: htmlsanitize.Text(req.Description),
		Status:      models.ProjectActive,
		Currency:    normalize.Currency(req.Currency),
		CreatedBy:   actor.ID,
		MemberIDs:   []primitive.ObjectID{actor.ID},
	}
	if req.TargetBudget != "" {
		budget, err := money.ParseAmount(req.TargetBudget)
		if err != nil || budget.Sign() < 0 {
			apierrors.Write(w, http.StatusBadRequest, "invalid target budget")
			return
		}
		dec, err := money.ToDecimal128(budget)
		if err != nil {
			apierrors.Write(w, http.StatusBadRequest, "invalid target budget")
			return
		}
		p.TargetBudget = dec
	}

	created, err := h.Projects.Create(ctx, p)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	h.AuditLog.AdminAction(ctx, audit.EventProjectCreated, actor.ID, created.ID, map[string]string{
		"name": created.Name,
	})
	apierrors.JSON(w, http.StatusCreated, toView(created))
}

// ServeList handles GET /api/projects. Admins see every project;
// everyone else sees only projects they are a member of.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var (
		rows []models.Project
		err  error
	)
	if authz.ResolveRole(actor) == authz.RoleAdmin {
		rows, err = h.Projects.ListAll(ctx)
	} else {
		rows, err = h.Projects.ListForUser(ctx, actor.ID)
	}
	if err != nil {
		h.Log.Error("project list failed", zap.Error(err))
		apierrors.Error(w, err)
		return
	}

	views := make([]projectView, 0, len(rows))
	for _, p := range rows {
		views = append(views, toView(p))
	}
	apierrors.JSON(w, http.StatusOK, map[string]any{"projects": views})
}

// ServeGet handles GET /api/projects/{projectID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid project id")
		return
	}
	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	if authz.ResolveRole(actor) != authz.RoleAdmin && !p.IsMember(actor.ID) {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}
	apierrors.JSON(w, http.StatusOK, toView(*p))
}

// ServeUpdate handles PUT /api/projects/{projectID}.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid project id")
		return
	}
	allowed, err := ledgerpolicy.HasCapability(ctx, h.Projects, actor, &id, authz.CapEditProject)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	if !allowed {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return
	}

	var req updateRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patch := models.Project{
		Name:        req.Name,
		Description: htmlsanitize.Text(req.Description),
		Status:      req.Status,
		Currency:    req.Currency,
	}
	if err := h.Projects.Update(ctx, id, patch); err != nil {
		apierrors.Error(w, err)
		return
	}
	h.AuditLog.AdminAction(ctx, audit.EventProjectUpdated, actor.ID, id, nil)

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		apierrors.Error(w, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, toView(*p))
}

// ServeAddMember handles POST /api/projects/{projectID}/members.
func (h *Handler) ServeAddMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, projectID, userID, ok := h.memberChangeArgs(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		apierrors.Error(w, err)
		return
	}
	if err := h.Projects.AddMember(ctx, projectID, userID); err != nil {
		apierrors.Error(w, err)
		return
	}
	h.AuditLog.AdminAction(ctx, audit.EventMemberAdded, actor.ID, projectID, map[string]string{
		"user_id": userID.Hex(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// ServeRemoveMember handles DELETE /api/projects/{projectID}/members/{userID}.
func (h *Handler) ServeRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid project id")
		return
	}
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if !h.requireManageMembers(ctx, w, actor, projectID) {
		return
	}
	if err := h.Projects.RemoveMember(ctx, projectID, userID); err != nil {
		apierrors.Error(w, err)
		return
	}
	h.AuditLog.AdminAction(ctx, audit.EventMemberRemoved, actor.ID, projectID, map[string]string{
		"user_id": userID.Hex(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// ServeSetMemberRole handles PUT /api/projects/{projectID}/members/{userID}.
func (h *Handler) ServeSetMemberRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid project id")
		return
	}
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if !h.requireManageMembers(ctx, w, actor, projectID) {
		return
	}

	var req memberRoleRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !authz.ValidRole(req.Role) {
		apierrors.Write(w, http.StatusBadRequest, "unknown role")
		return
	}
	if err := h.Projects.SetMemberRole(ctx, projectID, userID, req.Role); err != nil {
		apierrors.Error(w, err)
		return
	}
	h.AuditLog.AdminAction(ctx, audit.EventMemberRoleChanged, actor.ID, projectID, map[string]string{
		"user_id": userID.Hex(),
		"role":    normalize.Role(req.Role),
	})
	w.WriteHeader(http.StatusNoContent)
}

// memberChangeArgs parses and authorizes a body-carried member change.
func (h *Handler) memberChangeArgs(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.User, primitive.ObjectID, primitive.ObjectID, bool) {
	actor, ok := h.currentActor(ctx, r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return models.User{}, primitive.NilObjectID, primitive.NilObjectID, false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid project id")
		return models.User{}, primitive.NilObjectID, primitive.NilObjectID, false
	}

	var req memberRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return models.User{}, primitive.NilObjectID, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid user id")
		return models.User{}, primitive.NilObjectID, primitive.NilObjectID, false
	}
	if !h.requireManageMembers(ctx, w, actor, projectID) {
		return models.User{}, primitive.NilObjectID, primitive.NilObjectID, false
	}
	return actor, projectID, userID, true
}

func (h *Handler) requireManageMembers(ctx context.Context, w http.ResponseWriter, actor models.User, projectID primitive.ObjectID) bool {
	allowed, err := ledgerpolicy.CanManageMembers(ctx, h.Projects, actor, projectID)
	if err != nil {
		apierrors.Error(w, err)
		return false
	}
	if !allowed {
		apierrors.Write(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}
