// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auditlog"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/authz"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Handler struct {
	Projects *projectstore.Store
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(projects *projectstore.Store, users *userstore.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Projects: projects,
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

// canCreateProject gates project creation on the actor's global
// capability set; there is no project to scope the check to yet.
func canCreateProject(u models.User) bool {
	for _, c := range authz.GlobalPermissions(u) {
		if c == authz.CapEditProject {
			return true
		}
	}
	return false
}

func requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Medium())
}
