// internal/app/policy/ledgerpolicy.go
package ledgerpolicy

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/authz"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

// HasCapability reports whether the user holds cap in the scope the
// project reference selects. A nil projectID resolves against the
// user's global role; a set projectID loads the project and resolves
// membership-gated capabilities. A missing project is "not authorized"
// (false, nil), not an error, so callers can't probe for project
// existence through permission failures.
func HasCapability(ctx context.Context, projects *projectstore.Store, u models.User, projectID *primitive.ObjectID, cap authz.Capability) (bool, error) {
	if projectID == nil {
		return authz.HasCapability(authz.GlobalPermissions(u), cap), nil
	}
	p, err := projects.GetByID(ctx, *projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return authz.HasCapability(authz.ResolvePermissions(u, p), cap), nil
}

// CanManageAccounts reports whether the user may create, update, lock
// or delete accounts. Account management is never project-scoped: only
// the global role decides.
func CanManageAccounts(u models.User) bool {
	return authz.HasCapability(authz.GlobalPermissions(u), authz.CapManageAccounts)
}

// CanManageMembers reports whether the user may change the member list
// or member roles of the given project.
func CanManageMembers(ctx context.Context, projects *projectstore.Store, u models.User, projectID primitive.ObjectID) (bool, error) {
	return HasCapability(ctx, projects, u, &projectID, authz.CapManageMembers)
}

// CanViewReports reports whether the user may read aggregated reports
// in the given scope.
func CanViewReports(ctx context.Context, projects *projectstore.Store, u models.User, projectID *primitive.ObjectID) (bool, error) {
	return HasCapability(ctx, projects, u, projectID, authz.CapViewReports)
}
