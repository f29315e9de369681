// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/features/apierrors"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auditlog"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/authz"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/formutil"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/ratelimit"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
)

type Handler struct {
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Limiter  *ratelimit.LoginLimiter
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, auditLog *auditlog.Logger, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		AuditLog: auditLog,
		Limiter:  limiter,
		Log:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ServeLogin handles POST /api/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apierrors.Write(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		apierrors.Write(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if allowed, what := h.Limiter.Check(r, email); !allowed {
		h.Log.Warn("login rate limited",
			zap.String("limited_by", what),
			zap.String("ip", ratelimit.ClientIP(r)))
		apierrors.Write(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.AuditLog.Emit(ctx, audit.Event{
				Category:      audit.CategoryAuth,
				Action:        audit.EventLoginFailedUserNotFound,
				IP:            auditlog.ClientIP(r),
				Success:       false,
				FailureReason: "user not found",
				Details:       map[string]string{"email": email},
			})
			// Same response as a wrong password so the endpoint doesn't
			// reveal which emails exist.
			apierrors.Write(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("login: load user", zap.Error(err))
		apierrors.Write(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !userstore.CheckPassword(u.PasswordHash, req.Password) {
		h.AuditLog.Emit(ctx, audit.Event{
			Category:      audit.CategoryAuth,
			Action:        audit.EventLoginFailedWrongPassword,
			UserID:        &u.ID,
			IP:            auditlog.ClientIP(r),
			Success:       false,
			FailureReason: "wrong password",
		})
		apierrors.Write(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	role := authz.ResolveRole(*u)
	su := auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  role,
	}
	if err := auth.SignIn(w, r, su); err != nil {
		h.Log.Error("login: save session", zap.Error(err))
		apierrors.Write(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.Limiter.ResetEmail(email)

	h.AuditLog.Emit(ctx, audit.Event{
		Category: audit.CategoryAuth,
		Action:   audit.EventLoginSuccess,
		UserID:   &u.ID,
		IP:       auditlog.ClientIP(r),
		Success:  true,
		Details:  map[string]string{"role": role},
	})

	apierrors.JSON(w, http.StatusOK, sessionResponse(su))
}

// ServeMe handles GET /api/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apierrors.Write(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	apierrors.JSON(w, http.StatusOK, sessionResponse(*u))
}

// ServeLogout handles POST /api/logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if err := auth.SignOut(w, r); err != nil {
		h.Log.Warn("logout: clear session", zap.Error(err))
	}
	if ok {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		if uid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			h.AuditLog.Emit(ctx, audit.Event{
				Category: audit.CategoryAuth,
				Action:   audit.EventLogout,
				UserID:   &uid,
				IP:       auditlog.ClientIP(r),
				Success:  true,
			})
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
