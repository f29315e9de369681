// internal/app/system/authz/roles.go
package authz

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"

	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

// Finance roles, ordered roughly by privilege. Every signed-in user
// resolves to exactly one of these.
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleTreasurer  = "treasurer"
	RoleManager    = "manager"
	RoleStaff      = "staff"
)

// Capability names a single permitted operation. Handlers and the ledger
// service check capabilities, never roles, so the role→capability mapping
// stays in one place.
type Capability string

const (
	CapViewTransactions    Capability = "view_transactions"
	CapCreateIncome        Capability = "create_income"
	CapCreateExpense       Capability = "create_expense"
	CapApproveTransactions Capability = "approve_transactions"
	CapManageAccounts      Capability = "manage_accounts"
	CapManageMembers       Capability = "manage_members"
	CapViewReports         Capability = "view_reports"
	CapEditProject         Capability = "edit_project"
)

// AllCapabilities is the full grant set, used for admins.
var AllCapabilities = []Capability{
	CapViewTransactions,
	CapCreateIncome,
	CapCreateExpense,
	CapApproveTransactions,
	CapManageAccounts,
	CapManageMembers,
	CapViewReports,
	CapEditProject,
}

// roleGrants maps each non-admin role to its capability set. Admin is
// handled separately (full grant, no project membership required).
var roleGrants = map[string][]Capability{
	RoleAccountant: {
		CapViewTransactions, CapCreateIncome, CapCreateExpense,
		CapApproveTransactions, CapManageAccounts, CapViewReports,
	},
	RoleTreasurer: {
		CapViewTransactions, CapCreateIncome, CapCreateExpense,
		CapApproveTransactions, CapViewReports,
	},
	RoleManager: {
		CapViewTransactions, CapCreateIncome, CapCreateExpense,
		CapViewReports, CapEditProject, CapManageMembers,
	},
	RoleStaff: {
		CapViewTransactions, CapCreateIncome, CapCreateExpense,
	},
}

// superAdminEmails are bootstrap identities that resolve to admin even
// before anyone assigns them a finance role.
var superAdminEmails = map[string]struct{}{
	"admin@finance-up.local": {},
}

var superAdminTitles = map[string]struct{}{
	"superadmin":  {},
	"super admin": {},
}

// titleKeywords maps legacy free-text job-title fragments to roles.
// Titles are diacritic-folded before matching so both "Kế toán" and
// "ke toan" resolve to accountant.
var titleKeywords = []struct {
	keyword string
	role    string
}{
	{"accountant", RoleAccountant},
	{"ke toan", RoleAccountant},
	{"treasurer", RoleTreasurer},
	{"thu quy", RoleTreasurer},
	{"manager", RoleManager},
	{"quan ly", RoleManager},
}

// ResolveRole maps a user to a finance role using four tiers of
// precedence:
//
//  1. an explicitly assigned FinanceRole wins outright
//  2. super-admin identities (email or exact title) become admin
//  3. legacy job titles are keyword-matched after diacritic folding
//  4. everyone else is staff
func ResolveRole(u models.User) string {
	if role := strings.ToLower(strings.TrimSpace(u.FinanceRole)); role != "" && role != "none" {
		if _, ok := roleGrants[role]; ok || role == RoleAdmin {
			return role
		}
	}

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := superAdminEmails[email]; ok {
		return RoleAdmin
	}
	title := text.Fold(u.Title)
	if _, ok := superAdminTitles[title]; ok {
		return RoleAdmin
	}

	for _, tk := range titleKeywords {
		if strings.Contains(title, tk.keyword) {
			return tk.role
		}
	}
	return RoleStaff
}

// ValidRole reports whether s names a known finance role.
func ValidRole(s string) bool {
	role := strings.ToLower(strings.TrimSpace(s))
	if role == RoleAdmin {
		return true
	}
	_, ok := roleGrants[role]
	return ok
}

// ResolvePermissions computes the capability set a user holds within a
// project. Admins hold every capability regardless of membership.
// Non-admins must be project members to hold anything; a per-project
// role override in MemberRoles, when valid, replaces the user's global
// role inside that project.
//
// A nil project means the caller asked for project-scoped capabilities
// without naming a project: only admins hold anything there. Use
// GlobalPermissions for operations that are not tied to a project.
func ResolvePermissions(u models.User, p *models.Project) []Capability {
	role := ResolveRole(u)
	if role == RoleAdmin {
		return append([]Capability(nil), AllCapabilities...)
	}
	if p == nil || !p.IsMember(u.ID) {
		return nil
	}
	if override, ok := p.MemberRoles[u.ID.Hex()]; ok {
		override = strings.ToLower(strings.TrimSpace(override))
		if override == RoleAdmin {
			return append([]Capability(nil), AllCapabilities...)
		}
		if grants, ok := roleGrants[override]; ok {
			return append([]Capability(nil), grants...)
		}
	}
	return append([]Capability(nil), roleGrants[role]...)
}

// GlobalPermissions computes the capability set a user holds outside any
// project, from the global role alone. Transactions and accounts without
// a project reference are gated here.
func GlobalPermissions(u models.User) []Capability {
	role := ResolveRole(u)
	if role == RoleAdmin {
		return append([]Capability(nil), AllCapabilities...)
	}
	return append([]Capability(nil), roleGrants[role]...)
}

// HasCapability reports whether the resolved capability set contains cap.
func HasCapability(caps []Capability, cap Capability) bool {
	for _, c := range caps {
		if c == cap {
			return true
		}
	}
	return false
}
