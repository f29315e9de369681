// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
)

// UserCtx returns the session user's role (lowercased), name, Mongo
// ObjectID, and a found flag. If no user is present in context or the
// user ID is malformed, it returns "visitor", "", NilObjectID, false.
// Callers can trust that ok=true means a valid, authenticated user with
// a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// HasAnyRole reports whether the current request's user has any of the
// given roles. Returns false if no user is present.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleAdmin
}

// CanApprove reports whether the session role alone permits approving
// transactions. Project-scoped overrides are resolved separately against
// the project document; this is the coarse request-level gate.
func CanApprove(r *http.Request) bool {
	return HasAnyRole(r, RoleAdmin, RoleAccountant, RoleTreasurer)
}
