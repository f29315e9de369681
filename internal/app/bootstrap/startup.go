// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/authz"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		return fmt.Errorf("session store init: %w", err)
	}

	if appCfg.SuperAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, deps, appCfg.SuperAdminEmail, logger); err != nil {
			return err
		}
	}

	deps.PendingMonitor.Start()
	return nil
}

// ensureSuperAdmin guarantees an admin user exists for the configured
// email: an existing user is promoted to admin if needed, a missing one
// is created disabled-password (the account signs in once a password is
// set through the usual admin flow).
func ensureSuperAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	u, err := deps.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if authz.ResolveRole(*u) == authz.RoleAdmin {
			return nil
		}
		if err := deps.Users.SetFinanceRole(ctx, u.ID, authz.RoleAdmin); err != nil {
			return fmt.Errorf("promote superadmin: %w", err)
		}
		logger.Info("promoted existing user to admin", zap.String("email", email))
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		created, err := deps.Users.Create(ctx, models.User{
			FullName:    "Administrator",
			Email:       email,
			FinanceRole: authz.RoleAdmin,
		})
		if err != nil {
			return fmt.Errorf("create superadmin: %w", err)
		}
		logger.Info("created admin user", zap.String("email", created.Email), zap.String("id", created.ID.Hex()))
		return nil
	default:
		return fmt.Errorf("lookup superadmin: %w", err)
	}
}
